package task

const (
	CodeSuccess    = "200"
	MessageSuccess = "success"
	CodeError      = "-1"
	MessageError   = "ERROR"
)

// Result is the outcome envelope a task stores under its id.
type Result struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// NewSuccess returns a successful result carrying data.
func NewSuccess(data any) *Result {
	return &Result{Code: CodeSuccess, Message: MessageSuccess, Data: data}
}

// NewFailure returns a failed result. Empty code and message fall back to
// CodeError and MessageError.
func NewFailure(code, message string) *Result {
	if code == "" {
		code = CodeError
	}
	if message == "" {
		message = MessageError
	}
	return &Result{Code: code, Message: message}
}

// Success reports whether the result carries the success code.
func (r *Result) Success() bool {
	return r != nil && r.Code == CodeSuccess
}
