package bcmagic

// Response modes
const (
	ModeError    = "Error"
	ModeClear    = "clear"
	ModeRedirect = "redirect"
	ModeAutofill = "autofill"
)

// Response is the instruction returned for a scan
type Response struct {
	Mode   string `json:"mode"`
	Status string `json:"status,omitempty"`
	URL    string `json:"url,omitempty"`
	Field  string `json:"field,omitempty"`
	Value  string `json:"value,omitempty"`
	Msg    string `json:"msg,omitempty"`
}

// ReportError returns a response displaying message as an error status
func ReportError(message string) *Response {
	return &Response{Mode: ModeError, Status: message}
}

// RedirectToURL returns a response sending the client to url
func RedirectToURL(url string) *Response {
	return &Response{Mode: ModeRedirect, URL: url}
}

// Autofill returns a response filling field with value on the client
func Autofill(field, value string) *Response {
	return &Response{Mode: ModeAutofill, Field: field, Value: value}
}
