// Package storage persists pipeline artifacts using BoltDB: trained forest
// models and the evaluation report of each run. Nothing in the pipeline
// requires persistence; when no data path is configured the pipeline runs
// fully in memory. The store exists so a trained model and its run history
// survive the batch process.
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	modelsBucket = "models" // gob-encoded trained forests, keyed by run time
	runsBucket   = "runs"   // JSON evaluation reports, keyed by run time
)

// RunRecord is the persisted outcome of one pipeline run.
type RunRecord struct {
	Timestamp             time.Time `json:"timestamp"`
	CleanedRows           int       `json:"cleaned_rows"`
	TrainRows             int       `json:"train_rows"`
	EvalRows              int       `json:"eval_rows"`
	Accuracy              float64   `json:"accuracy"`
	ActualPositiveRate    float64   `json:"actual_positive_rate"`
	PredictedPositiveRate float64   `json:"predicted_positive_rate"`
	// Degenerate is set when the run produced no evaluation; the metric
	// fields above are meaningless for such a run.
	Degenerate string `json:"degenerate,omitempty"`
}

// Store provides persistent storage for models and run history.
type Store struct {
	db *bbolt.DB
}

// New opens the database under dataPath and creates the buckets.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, "hitcast.db")

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(modelsBucket)); err != nil {
			return fmt.Errorf("create models bucket: %w", err)
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(runsBucket)); err != nil {
			return fmt.Errorf("create runs bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func key(ts time.Time) []byte {
	return []byte(fmt.Sprintf("%020d", ts.UnixNano()))
}

// SaveModel stores a serialized model keyed by run timestamp.
func (s *Store) SaveModel(ts time.Time, data []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(modelsBucket)).Put(key(ts), data)
	})
}

// LatestModel returns the most recently stored model bytes, or nil when no
// model has been saved yet.
func (s *Store) LatestModel() ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(modelsBucket)).Cursor()
		if k, v := c.Last(); k != nil {
			data = bytes.Clone(v)
		}
		return nil
	})
	return data, err
}

// SaveRun appends a run record to the history.
func (s *Store) SaveRun(rec RunRecord) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal run record: %w", err)
		}
		return tx.Bucket([]byte(runsBucket)).Put(key(rec.Timestamp), data)
	})
}

// Runs returns up to limit most recent run records, newest first.
func (s *Store) Runs(limit int) ([]RunRecord, error) {
	var records []RunRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(runsBucket)).Cursor()
		for k, v := c.Last(); k != nil && len(records) < limit; k, v = c.Prev() {
			var rec RunRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				continue // skip malformed records
			}
			records = append(records, rec)
		}
		return nil
	})
	return records, err
}
