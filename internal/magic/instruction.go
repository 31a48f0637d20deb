package magic

import (
	"encoding/json"
	"fmt"
	"io"
)

// Mode tags understood by the controller. Any other mode is a status display.
const (
	ModeClear    = "clear"
	ModeRedirect = "redirect"
	ModeAutofill = "autofill"
)

// ScanEvent is one submission of the scan field.
type ScanEvent struct {
	Text string
	Mode string
}

// Instruction is the single effect a server response asks for.
type Instruction interface {
	isInstruction()
}

// Clear empties the status region.
type Clear struct{}

// Redirect navigates to URL.
type Redirect struct {
	URL string
}

// Autofill writes Value into the form field whose id is Field.
type Autofill struct {
	Field string
	Value string
}

// Status shows "Label: Text" in the status region.
type Status struct {
	Label string
	Text  string
}

// Invalid is a recognized mode missing a required companion key.
type Invalid struct {
	Label  string
	Reason string
}

func (Clear) isInstruction()    {}
func (Redirect) isInstruction() {}
func (Autofill) isInstruction() {}
func (Status) isInstruction()   {}
func (Invalid) isInstruction()  {}

// Response is a decoded server answer. Instruction is nil when the body had no mode.
type Response struct {
	Instruction Instruction
	Msg         string
	HasMsg      bool
}

// DecodeResponse reads one JSON instruction object.
func DecodeResponse(r io.Reader) (*Response, error) {
	var raw map[string]any
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding instruction: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("decoding instruction: not a JSON object")
	}

	resp := &Response{}
	if msg, ok := raw["msg"]; ok {
		resp.Msg = stringValue(msg)
		resp.HasMsg = true
	}

	mode, ok := raw["mode"]
	if !ok {
		return resp, nil
	}

	switch m := stringValue(mode); m {
	case ModeClear:
		resp.Instruction = Clear{}
	case ModeRedirect:
		url, ok := raw["url"]
		if !ok {
			resp.Instruction = Invalid{Label: "Error", Reason: "No redirect URL provided by server"}
			break
		}
		resp.Instruction = Redirect{URL: stringValue(url)}
	case ModeAutofill:
		field, ok := raw["field"]
		if !ok {
			resp.Instruction = Invalid{Label: "Error", Reason: "No autofill field provided by server"}
			break
		}
		resp.Instruction = Autofill{Field: stringValue(field), Value: stringValue(raw["value"])}
	default:
		resp.Instruction = Status{Label: m, Text: stringValue(raw["status"])}
	}
	return resp, nil
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}
