package labels

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"
)

// NetworkPrinter sends raw ZPL to a printer over TCP
type NetworkPrinter struct {
	printer      Printer
	dialTimeout  time.Duration
	writeTimeout time.Duration
	mu           sync.Mutex
}

// NewNetworkPrinter creates a NetworkPrinter for printer
func NewNetworkPrinter(printer Printer) *NetworkPrinter {
	return &NetworkPrinter{
		printer:      printer,
		dialTimeout:  5 * time.Second,
		writeTimeout: 10 * time.Second,
	}
}

// Printer returns the configuration this printer was created from
func (p *NetworkPrinter) Printer() Printer {
	return p.printer
}

// Status reports "online" when the printer accepts a connection
func (p *NetworkPrinter) Status(ctx context.Context) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	d := net.Dialer{Timeout: 2 * time.Second}
	conn, err := d.DialContext(ctx, "tcp", p.printer.Address())
	if err != nil {
		return "offline"
	}
	conn.Close()
	return "online"
}

// Print sends each ZPL document, newline separated, in one connection
func (p *NetworkPrinter) Print(ctx context.Context, zpl ...string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	d := net.Dialer{Timeout: p.dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", p.printer.Address())
	if err != nil {
		return fmt.Errorf("connecting to printer %s: %w", p.printer.Name, err)
	}
	defer conn.Close()

	conn.SetWriteDeadline(time.Now().Add(p.writeTimeout))

	if _, err := conn.Write([]byte(strings.Join(zpl, "\n"))); err != nil {
		return fmt.Errorf("sending data to printer %s: %w", p.printer.Name, err)
	}
	return nil
}
