package inventory

import (
	"fmt"
	"regexp"
	"time"
)

// Barcode keywords for items
const (
	KeywordUUID    = "invu"
	KeywordBarcode = "invb"
)

var uuidPattern = regexp.MustCompile(`^[a-fA-F0-9]{32}$`)

// IsUUID reports whether id looks like an item UUID
func IsUUID(id string) bool {
	return uuidPattern.MatchString(id)
}

// Item is a tracked piece of lab equipment or consumable
type Item struct {
	UUID         string    `json:"uuid"`                 // 32 hex characters, assigned on create
	BarcodeID    string    `json:"barcode_id,omitempty"` // existing barcode; used instead of uuid if provided
	ForceUseUUID bool      `json:"force_use_uuid,omitempty"`
	ItemType     string    `json:"item_type"`
	Location     string    `json:"location"`
	Status       string    `json:"status,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"creation_date"`
	ModifiedAt   time.Time `json:"modified_date"`
}

// BarcodeText is what gets printed on and scanned from the item's label
func (i *Item) BarcodeText() string {
	if i.BarcodeID == "" || i.ForceUseUUID {
		return fmt.Sprintf("%s|%s", KeywordUUID, i.UUID)
	}
	return fmt.Sprintf("%s|%s", KeywordBarcode, i.BarcodeID)
}

// URL is the item's page
func (i *Item) URL() string {
	return fmt.Sprintf("/inventory/%s/", i.UUID)
}

// LongTermStorage records which storage devices hold a flowcell's data
type LongTermStorage struct {
	FlowcellID     string    `json:"flowcell_id"`
	StorageDevices []string  `json:"storage_devices"` // item UUIDs
	CreatedAt      time.Time `json:"creation_date"`
	ModifiedAt     time.Time `json:"modified_date"`
}

// HasDevice reports whether uuid is already linked
func (l *LongTermStorage) HasDevice(uuid string) bool {
	for _, d := range l.StorageDevices {
		if d == uuid {
			return true
		}
	}
	return false
}
