package labels

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default raw print ports
const (
	PortTabletop = 9100
	PortMobile   = 6101
)

// Printer is a barcode label printer reachable over TCP
type Printer struct {
	Name        string  `yaml:"name" json:"name"`
	Model       string  `yaml:"model" json:"model"`
	Host        string  `yaml:"host" json:"host"`
	Port        int     `yaml:"port,omitempty" json:"port"`
	LabelShape  string  `yaml:"label_shape,omitempty" json:"label_shape,omitempty"`
	LabelWidth  float64 `yaml:"label_width,omitempty" json:"label_width,omitempty"`   // width or diameter in inches
	LabelHeight float64 `yaml:"label_height,omitempty" json:"label_height,omitempty"` // inches
	Notes       string  `yaml:"notes,omitempty" json:"notes,omitempty"`
	Default     bool    `yaml:"default,omitempty" json:"default,omitempty"`
}

// Address returns host:port, using the tabletop port when none is set
func (p Printer) Address() string {
	port := p.Port
	if port == 0 {
		port = PortTabletop
	}
	return fmt.Sprintf("%s:%d", p.Host, port)
}

// Printers is the set of configured printers
type Printers struct {
	Printers []Printer `yaml:"printers"`
}

// LoadPrinters reads a YAML printer file
func LoadPrinters(path string) (*Printers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading printer config: %w", err)
	}

	var p Printers
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing printer config: %w", err)
	}
	for i, printer := range p.Printers {
		if printer.Name == "" || printer.Host == "" {
			return nil, fmt.Errorf("printer %d: name and host are required", i)
		}
	}
	return &p, nil
}

// Get returns the printer called name
func (p *Printers) Get(name string) (Printer, bool) {
	for _, printer := range p.Printers {
		if printer.Name == name {
			return printer, true
		}
	}
	return Printer{}, false
}

// Default returns the printer marked default, or the first one
func (p *Printers) Default() (Printer, bool) {
	if len(p.Printers) == 0 {
		return Printer{}, false
	}
	for _, printer := range p.Printers {
		if printer.Default {
			return printer, true
		}
	}
	return p.Printers[0], true
}
