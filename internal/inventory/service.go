package inventory

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/bcmagic/internal/bcmagic"
	"github.com/zombor/bcmagic/internal/labels"
)

// ErrNoPrinter is returned when printing without a configured printer
var ErrNoPrinter = errors.New("no label printer configured")

// IDGenerator generates item UUIDs
type IDGenerator interface {
	Generate() (string, error)
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// LabelPrinter prints ZPL documents
type LabelPrinter interface {
	Print(ctx context.Context, zpl ...string) error
	Status(ctx context.Context) string
}

// uuidGenerator produces time-based UUIDs as 32 hex characters
type uuidGenerator struct{}

func (uuidGenerator) Generate() (string, error) {
	u, err := uuid.NewUUID()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(u[:]), nil
}

type defaultTimeSource struct{}

func (defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles inventory operations
type Service struct {
	db          DB
	printer     LabelPrinter
	template    *labels.Template
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service printing with the built-in item template.
// printer may be nil when no printer is configured.
func NewService(db DB, printer LabelPrinter) (*Service, error) {
	tmpl, err := labels.ParseTemplate(labels.ItemTemplate)
	if err != nil {
		return nil, err
	}
	return NewServiceWithDeps(db, printer, tmpl, uuidGenerator{}, defaultTimeSource{}), nil
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, printer LabelPrinter, tmpl *labels.Template, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		printer:     printer,
		template:    tmpl,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// CreateItem assigns a UUID and timestamps and stores the item
func (s *Service) CreateItem(item *Item) (*Item, error) {
	if strings.TrimSpace(item.ItemType) == "" {
		return nil, fmt.Errorf("item type is required")
	}
	if strings.TrimSpace(item.Location) == "" {
		return nil, fmt.Errorf("location is required")
	}

	id, err := s.idGenerator.Generate()
	if err != nil {
		return nil, fmt.Errorf("generating uuid: %w", err)
	}
	now := s.timeSource.Now()

	item.UUID = id
	item.BarcodeID = strings.TrimSpace(item.BarcodeID)
	item.CreatedAt = now
	item.ModifiedAt = now

	if err := s.db.SaveItem(item); err != nil {
		return nil, fmt.Errorf("saving item: %w", err)
	}
	return item, nil
}

// GetItem finds an item by UUID, falling back to its barcode id
func (s *Service) GetItem(id string) (*Item, error) {
	if IsUUID(id) {
		item, err := s.db.GetItem(strings.ToLower(id))
		if err == nil {
			return item, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("getting item: %w", err)
		}
	}
	item, err := s.db.GetItemByBarcode(id)
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns all items, or only those of itemType when it is set
func (s *Service) ListItems(itemType string) ([]*Item, error) {
	items, err := s.db.ListItems()
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	if itemType == "" {
		return items, nil
	}
	filtered := make([]*Item, 0, len(items))
	for _, item := range items {
		if item.ItemType == itemType {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

// DeleteItem removes an item
func (s *Service) DeleteItem(id string) error {
	item, err := s.GetItem(id)
	if err != nil {
		return err
	}
	if err := s.db.DeleteItem(item.UUID); err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// Search finds items whose UUID or barcode id equals text
func (s *Service) Search(text string) ([]bcmagic.Hit, error) {
	hits := make([]bcmagic.Hit, 0)
	seen := make(map[string]bool)

	add := func(item *Item, err error) error {
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			return err
		}
		if !seen[item.UUID] {
			seen[item.UUID] = true
			hits = append(hits, bcmagic.Hit{Label: item.BarcodeText(), URL: item.URL()})
		}
		return nil
	}

	if IsUUID(text) {
		if err := add(s.db.GetItem(strings.ToLower(text))); err != nil {
			return nil, fmt.Errorf("searching by uuid: %w", err)
		}
	}
	if err := add(s.db.GetItemByBarcode(text)); err != nil {
		return nil, fmt.Errorf("searching by barcode: %w", err)
	}
	return hits, nil
}

// LinkResult reports what Link changed
type LinkResult struct {
	Storage      *LongTermStorage `json:"storage"`
	Created      bool             `json:"created"`
	DeviceLinked bool             `json:"device_linked"`
}

// Message summarizes the result for the operator
func (r *LinkResult) Message() string {
	lines := []string{"Success:"}
	if r.Created || r.DeviceLinked {
		lines = append(lines,
			fmt.Sprintf("  LongTermStorage (LTS) Created: %t", r.Created),
			fmt.Sprintf("   Storage Device Linked to LTS: %t", r.DeviceLinked),
		)
	} else {
		lines = append(lines, "  No Updates Needed.")
	}
	return strings.Join(lines, "\n")
}

// Link records that the device identified by serial holds flowcell's data.
// Linking the same pair twice changes nothing.
func (s *Service) Link(flowcell, serial string) (*LinkResult, error) {
	flowcell = strings.TrimSpace(flowcell)
	serial = strings.TrimSpace(serial)
	if flowcell == "" || serial == "" {
		return nil, fmt.Errorf("flowcell and storage device are required")
	}

	device, err := s.GetItem(serial)
	if err != nil {
		return nil, fmt.Errorf("storage device %s: %w", serial, err)
	}

	now := s.timeSource.Now()
	result := &LinkResult{}

	lts, err := s.db.GetStorage(flowcell)
	switch {
	case errors.Is(err, ErrNotFound):
		lts = &LongTermStorage{FlowcellID: flowcell, StorageDevices: []string{}, CreatedAt: now}
		result.Created = true
	case err != nil:
		return nil, fmt.Errorf("getting storage: %w", err)
	}

	if !lts.HasDevice(device.UUID) {
		lts.StorageDevices = append(lts.StorageDevices, device.UUID)
		result.DeviceLinked = true
	}

	if result.Created || result.DeviceLinked {
		lts.ModifiedAt = now
		if err := s.db.SaveStorage(lts); err != nil {
			return nil, fmt.Errorf("saving storage: %w", err)
		}
		slog.Info("Flowcell linked to storage device", "flowcell", flowcell, "device", device.UUID)
	}

	result.Storage = lts
	return result, nil
}

// GetStorage returns the storage record for a flowcell
func (s *Service) GetStorage(flowcell string) (*LongTermStorage, error) {
	lts, err := s.db.GetStorage(flowcell)
	if err != nil {
		return nil, fmt.Errorf("getting storage: %w", err)
	}
	return lts, nil
}

// PrintLabel prints the item's barcode label
func (s *Service) PrintLabel(ctx context.Context, id string) error {
	if s.printer == nil {
		return ErrNoPrinter
	}
	item, err := s.GetItem(id)
	if err != nil {
		return err
	}

	zpl, err := s.template.Render(map[string]string{
		"UUID":        item.UUID,
		"BarcodeText": item.BarcodeText(),
		"ItemType":    item.ItemType,
		"Location":    item.Location,
	})
	if err != nil {
		return err
	}

	if err := s.printer.Print(ctx, zpl); err != nil {
		return fmt.Errorf("printing label: %w", err)
	}
	return nil
}

// PrinterStatus reports whether the label printer is reachable
func (s *Service) PrinterStatus(ctx context.Context) (string, error) {
	if s.printer == nil {
		return "", ErrNoPrinter
	}
	return s.printer.Status(ctx), nil
}
