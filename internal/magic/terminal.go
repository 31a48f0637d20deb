package magic

import (
	"fmt"
	"io"
	"sync"
)

// Terminal renders the status and message regions as lines on a writer.
// Only changes are printed.
type Terminal struct {
	mu      sync.Mutex
	out     io.Writer
	status  Input
	message Input

	lastStatus  string
	lastMessage string
}

// NewTerminal creates a Terminal showing status and message
func NewTerminal(out io.Writer, status, message Input) *Terminal {
	return &Terminal{out: out, status: status, message: message}
}

// Render prints whichever region changed since the last call
func (t *Terminal) Render() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s := t.status.Value(); s != t.lastStatus {
		t.lastStatus = s
		if s != "" {
			fmt.Fprintf(t.out, "status: %s\n", s)
		}
	}
	if m := t.message.Value(); m != t.lastMessage {
		t.lastMessage = m
		if m != "" {
			fmt.Fprintf(t.out, "  >> %s\n", m)
		}
	}
}

// WriterNavigator reports navigation on a writer and remembers the last URL
type WriterNavigator struct {
	mu   sync.Mutex
	out  io.Writer
	last string
}

// NewWriterNavigator creates a WriterNavigator printing to out
func NewWriterNavigator(out io.Writer) *WriterNavigator {
	return &WriterNavigator{out: out}
}

// Navigate prints url
func (n *WriterNavigator) Navigate(url string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.last = url
	fmt.Fprintf(n.out, "open: %s\n", url)
}

// Last returns the most recent URL navigated to
func (n *WriterNavigator) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last
}
