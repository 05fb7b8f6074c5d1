package logging

// Common field names for structured logging.
const (
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldProcedure = "procedure"
	FieldCode      = "code"
	FieldSessionID = "session_id"
	FieldScanID    = "scan_id"
	FieldItemID    = "item_id"
	FieldItems     = "items"
	FieldEvent     = "event"
	FieldDuration  = "duration_ms"
	FieldError     = "error"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldCacheHit  = "cache_hit"
)

// Component names.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentSession = "session"
	ComponentStorage = "storage"
	ComponentGemini  = "gemini"
	ComponentEvents  = "events"
	ComponentJanitor = "janitor"
)
