package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/receiptsplit/internal/auth"
	"github.com/mmynk/receiptsplit/pkg/receiptv1"
)

const (
	privateProcedure = "/test.v1.Echo/Private"
	publicProcedure  = "/test.v1.Echo/Public"
)

// echoSession answers with the session ID found in the context.
func echoSession(ctx context.Context, _ *connect.Request[receiptv1.GetSessionRequest]) (*connect.Response[receiptv1.CreateSessionResponse], error) {
	return connect.NewResponse(&receiptv1.CreateSessionResponse{SessionID: GetSessionID(ctx)}), nil
}

func newEchoServer(t *testing.T, tokens *auth.SessionTokens) string {
	t.Helper()
	opts := []connect.HandlerOption{
		connect.WithCodec(receiptv1.Codec{}),
		connect.WithInterceptors(RequireSession(tokens, publicProcedure), LoggingInterceptor()),
	}
	mux := http.NewServeMux()
	mux.Handle(privateProcedure, connect.NewUnaryHandler(privateProcedure, echoSession, opts...))
	mux.Handle(publicProcedure, connect.NewUnaryHandler(publicProcedure, echoSession, opts...))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server.URL
}

func call(t *testing.T, baseURL, procedure, authHeader string) (string, error) {
	t.Helper()
	client := connect.NewClient[receiptv1.GetSessionRequest, receiptv1.CreateSessionResponse](
		http.DefaultClient, baseURL+procedure, connect.WithCodec(receiptv1.Codec{}),
	)
	req := connect.NewRequest(&receiptv1.GetSessionRequest{})
	if authHeader != "" {
		req.Header().Set("Authorization", authHeader)
	}
	resp, err := client.CallUnary(context.Background(), req)
	if err != nil {
		return "", err
	}
	return resp.Msg.SessionID, nil
}

func TestRequireSession(t *testing.T) {
	tokens := auth.NewSessionTokens("test-secret", time.Hour)
	baseURL := newEchoServer(t, tokens)

	token, err := tokens.Generate("sess-42")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	tests := []struct {
		name          string
		procedure     string
		authHeader    string
		wantSessionID string
		wantCode      connect.Code
	}{
		{name: "valid token", procedure: privateProcedure, authHeader: "Bearer " + token, wantSessionID: "sess-42"},
		{name: "missing header", procedure: privateProcedure, wantCode: connect.CodeUnauthenticated},
		{name: "malformed header", procedure: privateProcedure, authHeader: "Token " + token, wantCode: connect.CodeUnauthenticated},
		{name: "bad token", procedure: privateProcedure, authHeader: "Bearer nope", wantCode: connect.CodeUnauthenticated},
		{name: "public procedure", procedure: publicProcedure, wantSessionID: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessionID, err := call(t, baseURL, tt.procedure, tt.authHeader)
			if tt.wantCode != 0 {
				var connectErr *connect.Error
				if !errors.As(err, &connectErr) || connectErr.Code() != tt.wantCode {
					t.Fatalf("error = %v, want code %v", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sessionID != tt.wantSessionID {
				t.Errorf("session id = %q, want %q", sessionID, tt.wantSessionID)
			}
		})
	}
}
