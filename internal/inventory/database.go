package inventory

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.etcd.io/bbolt"
)

const (
	itemBucketName    = "items"
	barcodeBucketName = "item_barcodes"
	storageBucketName = "long_term_storage"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("not found")

// DB defines the interface for inventory persistence
type DB interface {
	// SaveItem creates or replaces an item and its barcode index entry
	SaveItem(item *Item) error

	// GetItem retrieves an item by UUID
	GetItem(uuid string) (*Item, error)

	// GetItemByBarcode retrieves an item by its barcode id
	GetItemByBarcode(barcode string) (*Item, error)

	// ListItems returns all items
	ListItems() ([]*Item, error)

	// DeleteItem removes an item
	DeleteItem(uuid string) error

	// SaveStorage creates or replaces the storage record for a flowcell
	SaveStorage(lts *LongTermStorage) error

	// GetStorage retrieves the storage record for a flowcell
	GetStorage(flowcell string) (*LongTermStorage, error)
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB uses an open database and creates the inventory buckets
func NewBoltDB(db *bbolt.DB) (*BoltDB, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{itemBucketName, barcodeBucketName, storageBucketName} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating buckets: %w", err)
	}
	return &BoltDB{db: db}, nil
}

// SaveItem saves an item to the database
func (b *BoltDB) SaveItem(item *Item) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		items := tx.Bucket([]byte(itemBucketName))
		barcodes := tx.Bucket([]byte(barcodeBucketName))

		// Drop a stale barcode index entry when the barcode changed
		if old := items.Get([]byte(item.UUID)); old != nil {
			var prev Item
			if err := json.Unmarshal(old, &prev); err != nil {
				return fmt.Errorf("unmarshaling item: %w", err)
			}
			if prev.BarcodeID != "" && prev.BarcodeID != item.BarcodeID {
				if err := barcodes.Delete([]byte(prev.BarcodeID)); err != nil {
					return err
				}
			}
		}

		if item.BarcodeID != "" {
			if owner := barcodes.Get([]byte(item.BarcodeID)); owner != nil && string(owner) != item.UUID {
				return fmt.Errorf("barcode %s already belongs to item %s", item.BarcodeID, owner)
			}
			if err := barcodes.Put([]byte(item.BarcodeID), []byte(item.UUID)); err != nil {
				return err
			}
		}

		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("marshaling item: %w", err)
		}
		return items.Put([]byte(item.UUID), data)
	})
}

// GetItem retrieves an item by UUID
func (b *BoltDB) GetItem(uuid string) (*Item, error) {
	var item *Item
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(itemBucketName)).Get([]byte(uuid))
		if data == nil {
			return fmt.Errorf("item %s: %w", uuid, ErrNotFound)
		}
		return json.Unmarshal(data, &item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// GetItemByBarcode retrieves an item through the barcode index
func (b *BoltDB) GetItemByBarcode(barcode string) (*Item, error) {
	var item *Item
	err := b.db.View(func(tx *bbolt.Tx) error {
		uuid := tx.Bucket([]byte(barcodeBucketName)).Get([]byte(barcode))
		if uuid == nil {
			return fmt.Errorf("item with barcode %s: %w", barcode, ErrNotFound)
		}
		data := tx.Bucket([]byte(itemBucketName)).Get(uuid)
		if data == nil {
			return fmt.Errorf("item %s: %w", uuid, ErrNotFound)
		}
		return json.Unmarshal(data, &item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListItems returns all items
func (b *BoltDB) ListItems() ([]*Item, error) {
	items := make([]*Item, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(itemBucketName)).ForEach(func(_, v []byte) error {
			var item Item
			if err := json.Unmarshal(v, &item); err != nil {
				return fmt.Errorf("unmarshaling item: %w", err)
			}
			items = append(items, &item)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteItem removes an item and its barcode index entry
func (b *BoltDB) DeleteItem(uuid string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		items := tx.Bucket([]byte(itemBucketName))
		data := items.Get([]byte(uuid))
		if data == nil {
			return fmt.Errorf("item %s: %w", uuid, ErrNotFound)
		}
		var item Item
		if err := json.Unmarshal(data, &item); err != nil {
			return fmt.Errorf("unmarshaling item: %w", err)
		}
		if item.BarcodeID != "" {
			if err := tx.Bucket([]byte(barcodeBucketName)).Delete([]byte(item.BarcodeID)); err != nil {
				return err
			}
		}
		return items.Delete([]byte(uuid))
	})
}

// SaveStorage saves a long term storage record
func (b *BoltDB) SaveStorage(lts *LongTermStorage) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(lts)
		if err != nil {
			return fmt.Errorf("marshaling storage: %w", err)
		}
		return tx.Bucket([]byte(storageBucketName)).Put([]byte(lts.FlowcellID), data)
	})
}

// GetStorage retrieves the long term storage record for a flowcell
func (b *BoltDB) GetStorage(flowcell string) (*LongTermStorage, error) {
	var lts *LongTermStorage
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(storageBucketName)).Get([]byte(flowcell))
		if data == nil {
			return fmt.Errorf("storage for flowcell %s: %w", flowcell, ErrNotFound)
		}
		return json.Unmarshal(data, &lts)
	})
	if err != nil {
		return nil, err
	}
	return lts, nil
}
