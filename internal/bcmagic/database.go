package bcmagic

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const keymapBucketName = "keymaps"

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("not found")

// DB defines the interface for keyword map persistence
type DB interface {
	// SaveKeywordMap creates or replaces the map for its keyword
	SaveKeywordMap(k *KeywordMap) error

	// GetKeywordMap retrieves a map by keyword
	GetKeywordMap(keyword string) (*KeywordMap, error)

	// ListKeywordMaps returns all maps ordered by keyword
	ListKeywordMaps() ([]*KeywordMap, error)

	// DeleteKeywordMap removes a map
	DeleteKeywordMap(keyword string) error

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB opens path and creates the keyword map bucket
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}
	b, err := NewBoltDBFrom(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

// NewBoltDBFrom uses an already open database, so other stores can share the file
func NewBoltDBFrom(db *bbolt.DB) (*BoltDB, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(keymapBucketName))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating buckets: %w", err)
	}
	return &BoltDB{db: db}, nil
}

// SaveKeywordMap saves a keyword map to the database
func (b *BoltDB) SaveKeywordMap(k *KeywordMap) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(keymapBucketName))
		data, err := json.Marshal(k)
		if err != nil {
			return fmt.Errorf("marshaling keyword map: %w", err)
		}
		return bucket.Put([]byte(k.Keyword), data)
	})
}

// GetKeywordMap retrieves a keyword map
func (b *BoltDB) GetKeywordMap(keyword string) (*KeywordMap, error) {
	var k *KeywordMap
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(keymapBucketName))
		data := bucket.Get([]byte(keyword))
		if data == nil {
			return fmt.Errorf("keyword map %s: %w", keyword, ErrNotFound)
		}
		return json.Unmarshal(data, &k)
	})
	if err != nil {
		return nil, err
	}
	return k, nil
}

// ListKeywordMaps returns all keyword maps
func (b *BoltDB) ListKeywordMaps() ([]*KeywordMap, error) {
	maps := make([]*KeywordMap, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(keymapBucketName))
		return bucket.ForEach(func(_, v []byte) error {
			var k KeywordMap
			if err := json.Unmarshal(v, &k); err != nil {
				return fmt.Errorf("unmarshaling keyword map: %w", err)
			}
			maps = append(maps, &k)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return maps, nil
}

// DeleteKeywordMap removes a keyword map
func (b *BoltDB) DeleteKeywordMap(keyword string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(keymapBucketName))
		if bucket.Get([]byte(keyword)) == nil {
			return fmt.Errorf("keyword map %s: %w", keyword, ErrNotFound)
		}
		return bucket.Delete([]byte(keyword))
	})
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
