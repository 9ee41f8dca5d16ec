package common

// Application codes carried in the "code" field of every response.
const (
	CodeOK           = 20000
	CodeInternal     = 50000
	CodeFailed       = 50001
	CodeIllegalToken = 50008
	CodeLoginFailed  = 60204
)

// Response is the envelope the dashboard expects around every payload.
type Response struct {
	Code    int    `json:"code"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}
