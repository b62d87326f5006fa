package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/vijay-prabhu/inboxdomains/internal/aggregate"
)

const backendBolt = "bolt"

var snapshotBucket = []byte("snapshots")

// BoltStore keeps the snapshot under one key of a bbolt bucket
type BoltStore struct {
	db  *bbolt.DB
	now Clock
}

// OpenBolt opens or creates the bbolt file at path
func OpenBolt(path string, now Clock) (*BoltStore, error) {
	if now == nil {
		now = time.Now
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, storageErr(backendBolt, "open", err, "create database directory")
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, storageErr(backendBolt, "open", err, "open database")
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(snapshotBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, storageErr(backendBolt, "open", err, "create bucket")
	}

	return &BoltStore{db: db, now: now}, nil
}

func (s *BoltStore) Load(ctx context.Context) (*aggregate.Aggregate, error) {
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(snapshotBucket).Get([]byte(snapshotKey))
		if v != nil {
			// v is only valid inside the transaction
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, storageErr(backendBolt, "load", err, "read snapshot")
	}
	if data == nil {
		return nil, nil
	}

	agg, err := decode(data)
	if err != nil {
		return nil, storageErr(backendBolt, "load", err, "decode snapshot")
	}
	return agg, nil
}

func (s *BoltStore) Save(ctx context.Context, agg *aggregate.Aggregate) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	agg.CachedAt = aggregate.Timestamp{Time: s.now()}
	data, err := encode(agg)
	if err != nil {
		return storageErr(backendBolt, "save", err, "encode snapshot")
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(snapshotBucket).Put([]byte(snapshotKey), data)
	})
	if err != nil {
		return storageErr(backendBolt, "save", err, "write snapshot")
	}
	return nil
}

func (s *BoltStore) Clear(ctx context.Context) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(snapshotBucket).Delete([]byte(snapshotKey))
	})
	if err != nil {
		return storageErr(backendBolt, "clear", err, "delete snapshot")
	}
	return nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
