package history

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/scget/sc-downloader/internal/model"
)

// Bucket names
var (
	bucketDownloads = []byte("downloads")
)

// Open timeout for the bolt file lock
const openTimeout = 1 * time.Second

// Record is one completed download
type Record struct {
	ID         string     `json:"id"`
	URL        string     `json:"url"`
	Title      string     `json:"title"`
	Artist     string     `json:"artist"`
	Kind       model.Kind `json:"kind"`
	OutputPath string     `json:"output_path"`
	FileSize   int64      `json:"file_size"`
	SavedAt    time.Time  `json:"saved_at"`
}

// Store keeps the local download history in BoltDB. Records are keyed by
// UUID v7 so byte order matches chronological order.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the history database at path
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketDownloads)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Add stores a completed download, assigning ID and SavedAt when unset
func (s *Store) Add(rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = newRecordID()
	}
	if rec.SavedAt.IsZero() {
		rec.SavedAt = time.Now()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return rec, fmt.Errorf("failed to encode history record: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDownloads).Put([]byte(rec.ID), data)
	})
	if err != nil {
		return rec, fmt.Errorf("failed to store history record: %w", err)
	}

	return rec, nil
}

// List returns all records, newest first
func (s *Store) List() ([]Record, error) {
	var records []Record

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketDownloads).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				continue
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	return records, nil
}

// Remove deletes a single record by ID
func (s *Store) Remove(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDownloads).Delete([]byte(id))
	})
}

// Clear removes all records
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketDownloads); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketDownloads)
		return err
	})
}

// newRecordID generates a time-ordered record ID
func newRecordID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback keeps ordering roughly intact
		return fmt.Sprintf("rec-%d", time.Now().UnixNano())
	}
	return id.String()
}
