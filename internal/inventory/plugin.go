package inventory

import (
	"fmt"
	"strings"

	"github.com/zombor/bcmagic/internal/bcmagic"
)

// LinkMode is the bcm_mode for pairing flowcells with storage devices
const LinkMode = "lts_link"

// Field ids filled while linking
const (
	FieldFlowcell      = "id_flowcell"
	FieldStorageDevice = "id_storage_device"
)

// KeywordFlowcell prefixes flowcell barcodes
const KeywordFlowcell = "fc"

// Register adds the inventory search and the link mode to plugins
func (s *Service) Register(plugins *bcmagic.Plugins) error {
	if err := plugins.RegisterSearch("inventory", s.Search); err != nil {
		return err
	}
	return plugins.RegisterMode(LinkMode, s.linkScan)
}

// linkScan fills the link form: item labels go to the device field, flowcells to the flowcell field
func (s *Service) linkScan(keyword, text, mode string) *bcmagic.Response {
	parts := strings.SplitN(text, "|", 2)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		return bcmagic.ReportError(fmt.Sprintf("Scan (%s) is not a flowcell or storage device", text))
	}
	value := strings.TrimSpace(parts[1])

	switch keyword {
	case KeywordUUID, KeywordBarcode:
		item, err := s.GetItem(value)
		if err != nil {
			return bcmagic.ReportError(fmt.Sprintf("Storage device (%s) not found", value))
		}
		resp := bcmagic.Autofill(FieldStorageDevice, item.UUID)
		resp.Msg = fmt.Sprintf("Storage device: %s", item.ItemType)
		return resp
	case KeywordFlowcell:
		return bcmagic.Autofill(FieldFlowcell, value)
	default:
		return bcmagic.ReportError(fmt.Sprintf("Scan (%s) is not a flowcell or storage device", text))
	}
}

// DefaultKeywordMaps send item label scans to the item page
func DefaultKeywordMaps() []*bcmagic.KeywordMap {
	return []*bcmagic.KeywordMap{
		{
			Keyword:     KeywordUUID,
			Regex:       `^(?P<uuid>[a-fA-F0-9]{32})$`,
			URLTemplate: "/inventory/{{pathescape .uuid}}/",
		},
		{
			Keyword:     KeywordBarcode,
			Regex:       `^(?P<barcode_id>.+)$`,
			URLTemplate: "/inventory/{{pathescape .barcode_id}}/",
		},
	}
}
