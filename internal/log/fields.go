package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldExpenseID  = "expense_id"
	FieldAmountTHB  = "amount_thb"
	FieldAmountHKD  = "amount_hkd"
	FieldCategory   = "category"
	FieldSplitCount = "split_count"
	FieldRate       = "rate"
	FieldKey        = "key"
	FieldCount      = "count"
)

// Components defines standard component names
const (
	ComponentApp   = "app"
	ComponentHTTP  = "http"
	ComponentStore = "store"
	ComponentRate  = "rate"
	ComponentScan  = "scan"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpDelete   = "delete"
	OpPersist  = "persist"
	OpLoad     = "load"
	OpFetch    = "fetch"
	OpScan     = "scan"
	OpRender   = "render"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)
