// Package stash is a small named-snapshot store backing cmd/ngarchive's
// save/load/list/delete subcommands. It gives the archive engine's
// byte-stream sink/source collaborator — explicitly out of scope for the
// engine itself, per spec.md §1 — a persistent, third-party-backed
// implementation instead of only ever writing to os.File/bytes.Buffer,
// grounded on andreyvit-edb's bbolt.Open/Update/View usage (db.go).
package stash

import (
	"fmt"
	"log/slog"
	"time"

	"go.etcd.io/bbolt"
)

var bucketName = []byte("snapshots")

// Store is a bbolt-backed key/value store of named binary-encoded
// archive snapshots.
type Store struct {
	bdb *bbolt.DB
	log *slog.Logger
}

// Open opens (creating if absent) the bbolt database file at path,
// waiting up to timeout for a conflicting lock on the file to clear.
func Open(path string, timeout time.Duration, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	bdb, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("stash: opening %s: %w", path, err)
	}
	err = bdb.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		bdb.Close()
		return nil, fmt.Errorf("stash: preparing bucket: %w", err)
	}
	log.Info("stash opened", "path", path)
	return &Store{bdb: bdb, log: log}, nil
}

// Close closes the underlying database file.
func (s *Store) Close() error {
	return s.bdb.Close()
}

// Save writes data under name, overwriting any previous snapshot of the
// same name.
func (s *Store) Save(name string, data []byte) error {
	err := s.bdb.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(name), data)
	})
	if err != nil {
		return fmt.Errorf("stash: saving %q: %w", name, err)
	}
	s.log.Info("snapshot written", "name", name, "bytes", len(data))
	return nil
}

// Load returns the bytes saved under name, and whether one existed.
func (s *Store) Load(name string) ([]byte, bool, error) {
	var data []byte
	err := s.bdb.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(name))
		if v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("stash: loading %q: %w", name, err)
	}
	return data, data != nil, nil
}

// List returns every snapshot name currently stored, in bbolt's key
// order.
func (s *Store) List() ([]string, error) {
	var names []string
	err := s.bdb.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("stash: listing: %w", err)
	}
	return names, nil
}

// Delete removes the snapshot named name, if present.
func (s *Store) Delete(name string) error {
	err := s.bdb.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(name))
	})
	if err != nil {
		return fmt.Errorf("stash: deleting %q: %w", name, err)
	}
	s.log.Info("snapshot deleted", "name", name)
	return nil
}
