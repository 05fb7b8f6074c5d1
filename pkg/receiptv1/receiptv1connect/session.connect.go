// Package receiptv1connect wires receiptv1 messages to Connect handlers and
// clients for the receiptsplit.v1.SessionService.
package receiptv1connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/receiptsplit/pkg/receiptv1"
)

// SessionServiceName is the fully-qualified name of the SessionService service.
const SessionServiceName = "receiptsplit.v1.SessionService"

// Procedure names, as they appear in URL paths.
const (
	SessionServiceCreateSessionProcedure    = "/receiptsplit.v1.SessionService/CreateSession"
	SessionServiceGetSessionProcedure       = "/receiptsplit.v1.SessionService/GetSession"
	SessionServiceScanReceiptProcedure      = "/receiptsplit.v1.SessionService/ScanReceipt"
	SessionServiceResolveMergeProcedure     = "/receiptsplit.v1.SessionService/ResolveMerge"
	SessionServiceSendCommandProcedure      = "/receiptsplit.v1.SessionService/SendCommand"
	SessionServiceAddItemProcedure          = "/receiptsplit.v1.SessionService/AddItem"
	SessionServiceEditItemProcedure         = "/receiptsplit.v1.SessionService/EditItem"
	SessionServiceDeleteItemProcedure       = "/receiptsplit.v1.SessionService/DeleteItem"
	SessionServiceSetTipProcedure           = "/receiptsplit.v1.SessionService/SetTip"
	SessionServiceGetSummaryProcedure       = "/receiptsplit.v1.SessionService/GetSummary"
	SessionServiceCalculateSummaryProcedure = "/receiptsplit.v1.SessionService/CalculateSummary"
)

// PublicProcedures can be called without a session token.
var PublicProcedures = []string{
	SessionServiceCreateSessionProcedure,
	SessionServiceCalculateSummaryProcedure,
}

// SessionServiceHandler is implemented by the server.
type SessionServiceHandler interface {
	CreateSession(context.Context, *connect.Request[receiptv1.CreateSessionRequest]) (*connect.Response[receiptv1.CreateSessionResponse], error)
	GetSession(context.Context, *connect.Request[receiptv1.GetSessionRequest]) (*connect.Response[receiptv1.GetSessionResponse], error)
	ScanReceipt(context.Context, *connect.Request[receiptv1.ScanReceiptRequest]) (*connect.Response[receiptv1.ScanReceiptResponse], error)
	ResolveMerge(context.Context, *connect.Request[receiptv1.ResolveMergeRequest]) (*connect.Response[receiptv1.ResolveMergeResponse], error)
	SendCommand(context.Context, *connect.Request[receiptv1.SendCommandRequest]) (*connect.Response[receiptv1.SendCommandResponse], error)
	AddItem(context.Context, *connect.Request[receiptv1.AddItemRequest]) (*connect.Response[receiptv1.ItemResponse], error)
	EditItem(context.Context, *connect.Request[receiptv1.EditItemRequest]) (*connect.Response[receiptv1.ItemResponse], error)
	DeleteItem(context.Context, *connect.Request[receiptv1.DeleteItemRequest]) (*connect.Response[receiptv1.ItemResponse], error)
	SetTip(context.Context, *connect.Request[receiptv1.SetTipRequest]) (*connect.Response[receiptv1.SetTipResponse], error)
	GetSummary(context.Context, *connect.Request[receiptv1.GetSummaryRequest]) (*connect.Response[receiptv1.SummaryResponse], error)
	CalculateSummary(context.Context, *connect.Request[receiptv1.CalculateSummaryRequest]) (*connect.Response[receiptv1.SummaryResponse], error)
}

// NewSessionServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself. The receiptv1 JSON codec is always registered.
func NewSessionServiceHandler(svc SessionServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(receiptv1.Codec{})}, opts...)

	createSession := connect.NewUnaryHandler(SessionServiceCreateSessionProcedure, svc.CreateSession, opts...)
	getSession := connect.NewUnaryHandler(SessionServiceGetSessionProcedure, svc.GetSession, opts...)
	scanReceipt := connect.NewUnaryHandler(SessionServiceScanReceiptProcedure, svc.ScanReceipt, opts...)
	resolveMerge := connect.NewUnaryHandler(SessionServiceResolveMergeProcedure, svc.ResolveMerge, opts...)
	sendCommand := connect.NewUnaryHandler(SessionServiceSendCommandProcedure, svc.SendCommand, opts...)
	addItem := connect.NewUnaryHandler(SessionServiceAddItemProcedure, svc.AddItem, opts...)
	editItem := connect.NewUnaryHandler(SessionServiceEditItemProcedure, svc.EditItem, opts...)
	deleteItem := connect.NewUnaryHandler(SessionServiceDeleteItemProcedure, svc.DeleteItem, opts...)
	setTip := connect.NewUnaryHandler(SessionServiceSetTipProcedure, svc.SetTip, opts...)
	getSummary := connect.NewUnaryHandler(SessionServiceGetSummaryProcedure, svc.GetSummary, opts...)
	calculateSummary := connect.NewUnaryHandler(SessionServiceCalculateSummaryProcedure, svc.CalculateSummary, opts...)

	return "/" + SessionServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case SessionServiceCreateSessionProcedure:
			createSession.ServeHTTP(w, r)
		case SessionServiceGetSessionProcedure:
			getSession.ServeHTTP(w, r)
		case SessionServiceScanReceiptProcedure:
			scanReceipt.ServeHTTP(w, r)
		case SessionServiceResolveMergeProcedure:
			resolveMerge.ServeHTTP(w, r)
		case SessionServiceSendCommandProcedure:
			sendCommand.ServeHTTP(w, r)
		case SessionServiceAddItemProcedure:
			addItem.ServeHTTP(w, r)
		case SessionServiceEditItemProcedure:
			editItem.ServeHTTP(w, r)
		case SessionServiceDeleteItemProcedure:
			deleteItem.ServeHTTP(w, r)
		case SessionServiceSetTipProcedure:
			setTip.ServeHTTP(w, r)
		case SessionServiceGetSummaryProcedure:
			getSummary.ServeHTTP(w, r)
		case SessionServiceCalculateSummaryProcedure:
			calculateSummary.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// SessionServiceClient is a client for the receiptsplit.v1.SessionService.
type SessionServiceClient struct {
	createSession    *connect.Client[receiptv1.CreateSessionRequest, receiptv1.CreateSessionResponse]
	getSession       *connect.Client[receiptv1.GetSessionRequest, receiptv1.GetSessionResponse]
	scanReceipt      *connect.Client[receiptv1.ScanReceiptRequest, receiptv1.ScanReceiptResponse]
	resolveMerge     *connect.Client[receiptv1.ResolveMergeRequest, receiptv1.ResolveMergeResponse]
	sendCommand      *connect.Client[receiptv1.SendCommandRequest, receiptv1.SendCommandResponse]
	addItem          *connect.Client[receiptv1.AddItemRequest, receiptv1.ItemResponse]
	editItem         *connect.Client[receiptv1.EditItemRequest, receiptv1.ItemResponse]
	deleteItem       *connect.Client[receiptv1.DeleteItemRequest, receiptv1.ItemResponse]
	setTip           *connect.Client[receiptv1.SetTipRequest, receiptv1.SetTipResponse]
	getSummary       *connect.Client[receiptv1.GetSummaryRequest, receiptv1.SummaryResponse]
	calculateSummary *connect.Client[receiptv1.CalculateSummaryRequest, receiptv1.SummaryResponse]
}

// NewSessionServiceClient constructs a client for the SessionService. The
// baseURL is the scheme and host of the server, e.g. http://localhost:8080.
func NewSessionServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SessionServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(receiptv1.Codec{})}, opts...)

	return &SessionServiceClient{
		createSession:    connect.NewClient[receiptv1.CreateSessionRequest, receiptv1.CreateSessionResponse](httpClient, baseURL+SessionServiceCreateSessionProcedure, opts...),
		getSession:       connect.NewClient[receiptv1.GetSessionRequest, receiptv1.GetSessionResponse](httpClient, baseURL+SessionServiceGetSessionProcedure, opts...),
		scanReceipt:      connect.NewClient[receiptv1.ScanReceiptRequest, receiptv1.ScanReceiptResponse](httpClient, baseURL+SessionServiceScanReceiptProcedure, opts...),
		resolveMerge:     connect.NewClient[receiptv1.ResolveMergeRequest, receiptv1.ResolveMergeResponse](httpClient, baseURL+SessionServiceResolveMergeProcedure, opts...),
		sendCommand:      connect.NewClient[receiptv1.SendCommandRequest, receiptv1.SendCommandResponse](httpClient, baseURL+SessionServiceSendCommandProcedure, opts...),
		addItem:          connect.NewClient[receiptv1.AddItemRequest, receiptv1.ItemResponse](httpClient, baseURL+SessionServiceAddItemProcedure, opts...),
		editItem:         connect.NewClient[receiptv1.EditItemRequest, receiptv1.ItemResponse](httpClient, baseURL+SessionServiceEditItemProcedure, opts...),
		deleteItem:       connect.NewClient[receiptv1.DeleteItemRequest, receiptv1.ItemResponse](httpClient, baseURL+SessionServiceDeleteItemProcedure, opts...),
		setTip:           connect.NewClient[receiptv1.SetTipRequest, receiptv1.SetTipResponse](httpClient, baseURL+SessionServiceSetTipProcedure, opts...),
		getSummary:       connect.NewClient[receiptv1.GetSummaryRequest, receiptv1.SummaryResponse](httpClient, baseURL+SessionServiceGetSummaryProcedure, opts...),
		calculateSummary: connect.NewClient[receiptv1.CalculateSummaryRequest, receiptv1.SummaryResponse](httpClient, baseURL+SessionServiceCalculateSummaryProcedure, opts...),
	}
}

func (c *SessionServiceClient) CreateSession(ctx context.Context, req *connect.Request[receiptv1.CreateSessionRequest]) (*connect.Response[receiptv1.CreateSessionResponse], error) {
	return c.createSession.CallUnary(ctx, req)
}

func (c *SessionServiceClient) GetSession(ctx context.Context, req *connect.Request[receiptv1.GetSessionRequest]) (*connect.Response[receiptv1.GetSessionResponse], error) {
	return c.getSession.CallUnary(ctx, req)
}

func (c *SessionServiceClient) ScanReceipt(ctx context.Context, req *connect.Request[receiptv1.ScanReceiptRequest]) (*connect.Response[receiptv1.ScanReceiptResponse], error) {
	return c.scanReceipt.CallUnary(ctx, req)
}

func (c *SessionServiceClient) ResolveMerge(ctx context.Context, req *connect.Request[receiptv1.ResolveMergeRequest]) (*connect.Response[receiptv1.ResolveMergeResponse], error) {
	return c.resolveMerge.CallUnary(ctx, req)
}

func (c *SessionServiceClient) SendCommand(ctx context.Context, req *connect.Request[receiptv1.SendCommandRequest]) (*connect.Response[receiptv1.SendCommandResponse], error) {
	return c.sendCommand.CallUnary(ctx, req)
}

func (c *SessionServiceClient) AddItem(ctx context.Context, req *connect.Request[receiptv1.AddItemRequest]) (*connect.Response[receiptv1.ItemResponse], error) {
	return c.addItem.CallUnary(ctx, req)
}

func (c *SessionServiceClient) EditItem(ctx context.Context, req *connect.Request[receiptv1.EditItemRequest]) (*connect.Response[receiptv1.ItemResponse], error) {
	return c.editItem.CallUnary(ctx, req)
}

func (c *SessionServiceClient) DeleteItem(ctx context.Context, req *connect.Request[receiptv1.DeleteItemRequest]) (*connect.Response[receiptv1.ItemResponse], error) {
	return c.deleteItem.CallUnary(ctx, req)
}

func (c *SessionServiceClient) SetTip(ctx context.Context, req *connect.Request[receiptv1.SetTipRequest]) (*connect.Response[receiptv1.SetTipResponse], error) {
	return c.setTip.CallUnary(ctx, req)
}

func (c *SessionServiceClient) GetSummary(ctx context.Context, req *connect.Request[receiptv1.GetSummaryRequest]) (*connect.Response[receiptv1.SummaryResponse], error) {
	return c.getSummary.CallUnary(ctx, req)
}

func (c *SessionServiceClient) CalculateSummary(ctx context.Context, req *connect.Request[receiptv1.CalculateSummaryRequest]) (*connect.Response[receiptv1.SummaryResponse], error) {
	return c.calculateSummary.CallUnary(ctx, req)
}
