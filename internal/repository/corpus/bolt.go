package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.etcd.io/bbolt"
)

const (
	metaBucket   = "meta"
	chunksBucket = "chunks"

	metaModel      = "model"
	metaDimensions = "dimensions"
)

// LoadBolt reads a snapshot from a bbolt file opened read-only. Chunks come back
// in key order.
func LoadBolt(path string) (Snapshot, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{ReadOnly: true, Timeout: time.Second})
	if err != nil {
		return Snapshot{}, fmt.Errorf("open bolt corpus %s: %w", path, err)
	}
	defer func() { _ = db.Close() }()

	var snap Snapshot
	err = db.View(func(tx *bbolt.Tx) error {
		if meta := tx.Bucket([]byte(metaBucket)); meta != nil {
			snap.Model = string(meta.Get([]byte(metaModel)))
			if raw := meta.Get([]byte(metaDimensions)); raw != nil {
				dims, err := strconv.Atoi(string(raw))
				if err != nil {
					return fmt.Errorf("parse dimensions: %w", err)
				}
				snap.Dimensions = dims
			}
		}

		bucket := tx.Bucket([]byte(chunksBucket))
		if bucket == nil {
			return errors.New("chunks bucket not found")
		}
		return bucket.ForEach(func(k, v []byte) error {
			var row chunkRow
			if err := json.Unmarshal(v, &row); err != nil {
				return fmt.Errorf("decode chunk %s: %w", k, err)
			}
			if row.ID == "" {
				row.ID = string(k)
			}
			snap.Chunks = append(snap.Chunks, row.toChunk())
			return nil
		})
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("read bolt corpus: %w", err)
	}
	return snap, nil
}

// WriteBolt stores a snapshot, replacing any chunks already present.
func WriteBolt(path string, snap Snapshot) error {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return fmt.Errorf("open bolt corpus %s: %w", path, err)
	}
	defer func() { _ = db.Close() }()

	err = db.Update(func(tx *bbolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists([]byte(metaBucket))
		if err != nil {
			return fmt.Errorf("create meta bucket: %w", err)
		}
		if err := meta.Put([]byte(metaModel), []byte(snap.Model)); err != nil {
			return err
		}
		if err := meta.Put([]byte(metaDimensions), []byte(strconv.Itoa(snap.Dimensions))); err != nil {
			return err
		}

		if tx.Bucket([]byte(chunksBucket)) != nil {
			if err := tx.DeleteBucket([]byte(chunksBucket)); err != nil {
				return fmt.Errorf("reset chunks bucket: %w", err)
			}
		}
		bucket, err := tx.CreateBucket([]byte(chunksBucket))
		if err != nil {
			return fmt.Errorf("create chunks bucket: %w", err)
		}
		for _, c := range snap.Chunks {
			data, err := json.Marshal(rowFromChunk(c))
			if err != nil {
				return fmt.Errorf("encode chunk %s: %w", c.ID(), err)
			}
			if err := bucket.Put([]byte(c.ID()), data); err != nil {
				return fmt.Errorf("put chunk %s: %w", c.ID(), err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write bolt corpus: %w", err)
	}
	return nil
}
