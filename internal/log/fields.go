package log

// Standard field names
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldSessionID  = "session_id"
	FieldFileName   = "file_name"
	FieldRows       = "rows"
	FieldWarnings   = "warnings"
	FieldCount      = "count"
	FieldCategory   = "category"
	FieldKeyword    = "keyword"
	FieldTotalSpent = "total_spent"
	FieldSheetsRef  = "sheets_ref"
	FieldAddr       = "addr"
)

// Components
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentImport   = "import"
	ComponentSession  = "session"
	ComponentAMQP     = "amqp"
	ComponentSheets   = "sheets"
	ComponentCache    = "cache"
	ComponentSecurity = "security"
	ComponentTrace    = "trace"
	ComponentTemplate = "template"
	ComponentCLI      = "cli"
)

// Operations
const (
	OpImport   = "import"
	OpExport   = "export"
	OpFilter   = "filter"
	OpPublish  = "publish"
	OpParse    = "parse"
	OpRender   = "render"
	OpValidate = "validate"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError adds the error text; nil is ignored.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithImport describes an accepted upload.
func (f LogFields) WithImport(sessionID, fileName string, rows, warnings int) LogFields {
	f[FieldSessionID] = sessionID
	f[FieldFileName] = fileName
	f[FieldRows] = rows
	f[FieldWarnings] = warnings
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	if userAgent != "" {
		f[FieldUserAgent] = userAgent
	}
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = statusCode < 400
	return f
}

// ToSlice flattens the fields into slog key/value pairs. The component key
// is left to the Logger.
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		if k == FieldComponent {
			continue
		}
		slice = append(slice, k, v)
	}
	return slice
}
