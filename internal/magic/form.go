package magic

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Input is a single editable value on the page
type Input interface {
	Value() string
	SetValue(value string)
}

// TextField is a concurrency-safe Input. It also serves as a display region.
type TextField struct {
	mu    sync.Mutex
	value string
}

// NewTextField creates a TextField holding value
func NewTextField(value string) *TextField {
	return &TextField{value: value}
}

// Value returns the current text
func (t *TextField) Value() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.value
}

// SetValue replaces the current text
func (t *TextField) SetValue(value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.value = value
}

// Input types with special meaning for fill counting
const (
	InputText   = "text"
	InputHidden = "hidden"
	InputSubmit = "submit"
)

// FormField is one input element of a Form
type FormField struct {
	TextField

	ID      string
	Name    string
	Type    string
	Hidden  bool
	Initial string
}

// NewTextInput creates a visible text input. Its id follows the "id_<name>" convention.
func NewTextInput(name string) *FormField {
	return &FormField{ID: "id_" + name, Name: name, Type: InputText}
}

// NewHiddenInput creates a hidden input carrying value
func NewHiddenInput(name, value string) *FormField {
	f := &FormField{ID: "id_" + name, Name: name, Type: InputHidden, Hidden: true, Initial: value}
	f.SetValue(value)
	return f
}

// NewSubmitInput creates a submit button
func NewSubmitInput(name, label string) *FormField {
	f := &FormField{ID: "id_" + name, Name: name, Type: InputSubmit, Initial: label}
	f.SetValue(label)
	return f
}

// eligible reports whether the field counts toward a full form
func (f *FormField) eligible() bool {
	return !f.Hidden && f.Type != InputHidden && f.Type != InputSubmit
}

// Form is an ordered set of fields with a submit action
type Form struct {
	fields []*FormField
	submit func(url.Values)
}

// NewForm creates a Form. submit receives a snapshot of the field values.
func NewForm(submit func(url.Values), fields ...*FormField) *Form {
	return &Form{fields: fields, submit: submit}
}

// Field looks up a field by id
func (f *Form) Field(id string) (*FormField, bool) {
	for _, field := range f.fields {
		if field.ID == id {
			return field, true
		}
	}
	return nil, false
}

// FillState counts non-empty eligible fields against all eligible fields
func (f *Form) FillState() (filled, total int) {
	for _, field := range f.fields {
		if !field.eligible() {
			continue
		}
		total++
		if len(field.Value()) > 0 {
			filled++
		}
	}
	return filled, total
}

// Values snapshots every named, non-submit field
func (f *Form) Values() url.Values {
	values := url.Values{}
	for _, field := range f.fields {
		if field.Name == "" || field.Type == InputSubmit {
			continue
		}
		values.Add(field.Name, field.Value())
	}
	return values
}

// Submit hands a snapshot of the values to the submit action
func (f *Form) Submit() {
	if f.submit == nil {
		return
	}
	f.submit(f.Values())
}

// Reset restores every field to its initial value
func (f *Form) Reset() {
	for _, field := range f.fields {
		field.SetValue(field.Initial)
	}
}

// HTTPSubmitter posts submitted forms to an action URL without waiting for the result
type HTTPSubmitter struct {
	action string
	client *http.Client
	wg     sync.WaitGroup
}

// NewHTTPSubmitter creates a submitter for action
func NewHTTPSubmitter(action string, client *http.Client) *HTTPSubmitter {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPSubmitter{action: action, client: client}
}

// Submit starts posting values in the background
func (s *HTTPSubmitter) Submit(values url.Values) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.post(context.Background(), values); err != nil {
			slog.Error("Form submission failed", "action", s.action, "error", err)
			return
		}
		slog.Info("Form submitted", "action", s.action)
	}()
}

// Wait blocks until every started submission has finished
func (s *HTTPSubmitter) Wait() {
	s.wg.Wait()
}

func (s *HTTPSubmitter) post(ctx context.Context, values url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.action, strings.NewReader(values.Encode()))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting form: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("form action returned status %d", resp.StatusCode)
	}
	return nil
}
