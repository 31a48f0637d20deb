package magic

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Notices shown by the controller
const (
	SentNotice     = "Sent command to server"
	FailureNotice  = "Failed to contact server"
	ReceivedNotice = "Message received!"
)

// MessageTimeout is how long a message stays before its timer clears it.
const MessageTimeout = 3 * time.Second

// Navigator leaves the current page for url
type Navigator interface {
	Navigate(url string)
}

// Shell is the page the controller drives
type Shell struct {
	Scan      Input
	Mode      Input
	Status    Input
	Message   Input
	Form      *Form
	Navigator Navigator
	// Layout is notified after every change to what is displayed. Optional.
	Layout *Registry
}

// Controller bridges the scan field to server-directed form manipulation.
// All shell reads and writes happen under mu, which plays the part of the UI thread.
type Controller struct {
	mu       sync.Mutex
	shell    Shell
	endpoint Endpoint
	clock    Clock
	inflight sync.WaitGroup
}

// NewController creates a Controller using real timers
func NewController(shell Shell, endpoint Endpoint) *Controller {
	return NewControllerWithClock(shell, endpoint, systemClock{})
}

// NewControllerWithClock creates a Controller with a custom clock for testing
func NewControllerWithClock(shell Shell, endpoint Endpoint, clock Clock) *Controller {
	return &Controller{
		shell:    shell,
		endpoint: endpoint,
		clock:    clock,
	}
}

// HandleKey submits the scan field when key is Enter and ignores anything else.
// The submission runs in the background; Wait blocks until it has been applied.
func (c *Controller) HandleKey(ctx context.Context, key rune) {
	if key != '\r' && key != '\n' {
		return
	}

	c.mu.Lock()
	text := c.shell.Scan.Value()
	mode := c.shell.Mode.Value()
	c.shell.Scan.SetValue("")
	c.mu.Unlock()

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		c.submit(ctx, text, mode)
	}()
}

// Wait blocks until every scan started by HandleKey has been applied
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// SubmitScan clears the scan field, sends the scan and applies the answer.
// Failures end up on screen, never as errors.
func (c *Controller) SubmitScan(ctx context.Context, text, mode string) {
	c.mu.Lock()
	c.shell.Scan.SetValue("")
	c.mu.Unlock()
	c.submit(ctx, text, mode)
}

// submit sends a scan whose field has already been cleared
func (c *Controller) submit(ctx context.Context, text, mode string) {
	c.mu.Lock()
	c.showMessage(SentNotice)
	c.notify()
	c.mu.Unlock()

	resp, err := c.endpoint.Submit(ctx, ScanEvent{Text: text, Mode: mode})

	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.notify()

	if err != nil {
		slog.Warn("Scan submission failed", "mode", mode, "error", err)
		c.showMessage(FailureNotice)
		return
	}
	c.dispatch(resp)
}

// Autofill writes value into the field with id field and submits the form once every
// eligible field holds a value.
func (c *Controller) Autofill(field, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.notify()
	c.autofill(field, value)
}

// ShowStatus renders "label: text", or clears the status region when both are empty
func (c *Controller) ShowStatus(label, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.notify()
	c.showStatus(label, text)
}

// ShowMessage renders a notice that its own timer clears after MessageTimeout.
// Earlier timers are not cancelled, so they may wipe a newer message early.
func (c *Controller) ShowMessage(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.notify()
	c.showMessage(text)
}

func (c *Controller) dispatch(resp *Response) {
	switch in := resp.Instruction.(type) {
	case nil:
	case Clear:
		c.showStatus("", "")
	case Redirect:
		c.showMessage("Redirecting to: " + in.URL)
		c.shell.Navigator.Navigate(in.URL)
	case Autofill:
		c.autofill(in.Field, in.Value)
	case Invalid:
		c.showStatus(in.Label, in.Reason)
	case Status:
		c.showMessage(ReceivedNotice)
		c.showStatus(in.Label, in.Text)
	}

	if resp.HasMsg {
		c.showMessage(resp.Msg)
	}
}

func (c *Controller) autofill(id, value string) {
	field, ok := c.shell.Form.Field(id)
	if !ok {
		slog.Warn("Autofill target missing", "field", id)
		c.showStatus("Error", "No form field named "+id)
		return
	}
	field.SetValue(value)

	filled, total := c.shell.Form.FillState()
	if filled != total {
		c.showStatus("Form Fill Count", fmt.Sprintf("Count(%d) - Total(%d)", filled, total))
		return
	}

	c.showStatus("Form Full", "Form is now full and ready to process")
	c.shell.Form.Submit()
	c.shell.Form.Reset()
}

func (c *Controller) showStatus(label, text string) {
	if label == "" && text == "" {
		c.shell.Status.SetValue("")
		return
	}
	c.shell.Status.SetValue(label + ": " + text)
}

func (c *Controller) showMessage(text string) {
	c.shell.Message.SetValue(text)
	c.clock.AfterFunc(MessageTimeout, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.shell.Message.SetValue("")
		c.notify()
	})
}

func (c *Controller) notify() {
	if c.shell.Layout != nil {
		c.shell.Layout.Notify()
	}
}
