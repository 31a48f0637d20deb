package labels

import (
	"fmt"
	"strings"
	"text/template"
)

// ItemTemplate is the built-in ZPL layout for inventory item labels
const ItemTemplate = `^FX Inventory item label
^XA
^LH0,0
^FO20,20^BQN,2,3^FDQA,{{.BarcodeText}}^FS
^FO150,30^A0N,30,30^FD{{.ItemType}}^FS
^FO150,70^A0N,20,20^FD{{.Location}}^FS
^FO150,100^A0N,18,18^FD{{.BarcodeText}}^FS
^XZ`

// Template renders ZPL from a text/template
type Template struct {
	tmpl *template.Template
}

// ParseTemplate parses a ZPL template
func ParseTemplate(text string) (*Template, error) {
	t, err := template.New("zpl").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing zpl template: %w", err)
	}
	return &Template{tmpl: t}, nil
}

// Render executes the template with data
func (t *Template) Render(data any) (string, error) {
	var sb strings.Builder
	if err := t.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("rendering zpl template: %w", err)
	}
	return sb.String(), nil
}
