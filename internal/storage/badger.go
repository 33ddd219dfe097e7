package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"bskypromo/internal/domain"
)

// BadgerRepository implements the Repository interface using BadgerDB.
type BadgerRepository struct {
	db  *badger.DB
	log logrus.FieldLogger
}

// NewBadgerRepository opens the history database at the given path.
func NewBadgerRepository(dbPath string, logger logrus.FieldLogger) (*BadgerRepository, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = &badgerLogger{logger.WithField("component", "badgerdb")}

	db, err := badger.Open(opts)
	if err != nil {
		logger.WithError(err).Error("Failed to open BadgerDB")
		return nil, fmt.Errorf("failed to open badger db at %s: %w", dbPath, err)
	}

	return &BadgerRepository{
		db:  db,
		log: logger.WithField("component", "repository"),
	}, nil
}

// Close closes the BadgerDB database connection.
func (r *BadgerRepository) Close() error {
	if err := r.db.Close(); err != nil {
		r.log.WithError(err).Error("Error closing BadgerDB")
		return err
	}
	return nil
}

// generatePostKey creates a unique, time-ordered key for a history entry.
// Format: post:{RFC3339Nano timestamp}:{tweetID}
func generatePostKey(record domain.PostRecord) []byte {
	return []byte(fmt.Sprintf("post:%s:%s", record.PostedAt.UTC().Format(time.RFC3339Nano), record.TweetID))
}

// postPrefix is the key prefix shared by all history entries.
var postPrefix = []byte("post:")

// SavePost stores one history entry. PostedAt defaults to now when unset.
func (r *BadgerRepository) SavePost(ctx context.Context, record domain.PostRecord) error {
	log := r.log.WithFields(logrus.Fields{
		"tweet_id": record.TweetID,
		"kind":     record.Kind,
	})

	if record.PostedAt.IsZero() {
		record.PostedAt = time.Now()
	}

	recordBytes, err := json.Marshal(record)
	if err != nil {
		log.WithError(err).Error("Failed to marshal post record to JSON")
		return fmt.Errorf("failed to marshal post record: %w", err)
	}

	key := generatePostKey(record)

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(key, recordBytes))
	})
	if err != nil {
		log.WithError(err).Error("Failed to save post record to BadgerDB")
		return fmt.Errorf("failed to save post record: %w", err)
	}

	log.Info("Post recorded in history")
	return nil
}

// RecentPosts retrieves up to limit history entries, newest first. A
// non-positive limit returns everything.
func (r *BadgerRepository) RecentPosts(ctx context.Context, limit int) ([]domain.PostRecord, error) {
	var records []domain.PostRecord

	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(postPrefix); it.ValidForPrefix(postPrefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var record domain.PostRecord
				valCopy := make([]byte, len(val))
				copy(valCopy, val)
				if err := json.Unmarshal(valCopy, &record); err != nil {
					r.log.WithError(err).WithField("key", string(item.Key())).Error("Failed to unmarshal post record from DB")
					return fmt.Errorf("failed to unmarshal post record for key %s: %w", string(item.Key()), err)
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.log.WithError(err).Error("Failed to retrieve post history from BadgerDB")
		return nil, fmt.Errorf("failed to get post history: %w", err)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].PostedAt.After(records[j].PostedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	r.log.WithField("record_count", len(records)).Debug("Post history retrieved")
	return records, nil
}

// --- BadgerDB Internal Logger ---

// badgerLogger adapts logrus.FieldLogger to Badger's logger interface.
type badgerLogger struct {
	logger logrus.FieldLogger
}

func (l *badgerLogger) Errorf(f string, v ...interface{}) {
	l.logger.Errorf(f, v...)
}
func (l *badgerLogger) Warningf(f string, v ...interface{}) {
	l.logger.Warningf(f, v...)
}
func (l *badgerLogger) Infof(f string, v ...interface{}) {
	l.logger.Infof(f, v...)
}
func (l *badgerLogger) Debugf(f string, v ...interface{}) {
	l.logger.Debugf(f, v...)
}
