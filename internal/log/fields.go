package log

// Common field names for structured logging
const (
	FieldComponent    = "component"
	FieldRequestID    = "request_id"
	FieldClientIP     = "client_ip"
	FieldError        = "error"
	FieldOperation    = "operation"
	FieldUserID       = "user_id"
	FieldIntent       = "intent"
	FieldChartKind    = "chart_kind"
	FieldDateRange    = "date_range"
	FieldMessageLen   = "message_len"
	FieldExpenseTitle = "expense_title"
	FieldAmountCents  = "amount_cents"
	FieldCategory     = "category"
	FieldSheetsRef    = "sheets_ref"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentChat      = "chat"
	ComponentAssistant = "assistant"
	ComponentExpense   = "expense"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
	ComponentBackend   = "backend"
)

// Operations defines standard operation names
const (
	OpCreate    = "create"
	OpRead      = "read"
	OpDelete    = "delete"
	OpList      = "list"
	OpInterpret = "interpret"
	OpDispatch  = "dispatch"
	OpRender    = "render"
	OpSync      = "sync"
	OpValidate  = "validate"
	OpShutdown  = "shutdown"
	OpStartup   = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithRequestID adds request ID field
func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

// WithClientIP adds client IP field
func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithUser adds the acting user
func (f LogFields) WithUser(userID int64) LogFields {
	f[FieldUserID] = userID
	return f
}

// WithExpense adds expense-related fields
func (f LogFields) WithExpense(title string, amountCents int64, category string) LogFields {
	f[FieldExpenseTitle] = title
	f[FieldAmountCents] = amountCents
	f[FieldCategory] = category
	return f
}

// WithInterpretation adds the outcome of message interpretation
func (f LogFields) WithInterpretation(intent, dateRange string) LogFields {
	f[FieldIntent] = intent
	f[FieldDateRange] = dateRange
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
