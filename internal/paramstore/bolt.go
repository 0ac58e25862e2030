package paramstore

import (
	"context"
	"encoding/binary"
	"errors"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/leonardcser/ssm-cache/internal/cache"
)

const (
	MaxNameLength    = 2048
	StandardMaxValue = 4 * 1024
	AdvancedMaxValue = 8 * 1024

	TierStandard = "Standard"
	TierAdvanced = "Advanced"

	headerSize = 17
)

var (
	ErrAlreadyExists = errors.New("paramstore: parameter already exists")
	ErrInvalidName   = errors.New("paramstore: invalid parameter name")
	ErrValueTooLarge = errors.New("paramstore: value too large")
)

// BoltStore is a local parameter store persisted in a Bolt database. Like
// a remote store it stamps last-modified times and versions itself.
// It is safe for concurrent use by multiple goroutines.
type BoltStore struct {
	db     *bolt.DB
	bucket []byte
	now    func() time.Time
}

type Options struct {
	// Bucket is the name of the Bolt bucket to use.
	Bucket string
}

// Open initializes or opens a BoltStore at the given path.
func Open(path string, opts Options) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	bucket := []byte("parameters")
	if opts.Bucket != "" {
		bucket = []byte(opts.Bucket)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltStore{db: db, bucket: bucket, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// record layout: 8 bytes big endian last-modified unix nanos ||
// 8 bytes version || 1 byte type || raw value
type record struct {
	lastModified time.Time
	version      int64
	secure       bool
	value        []byte
}

func (r record) marshal() []byte {
	buf := make([]byte, headerSize+len(r.value))
	binary.BigEndian.PutUint64(buf[:8], uint64(r.lastModified.UnixNano()))
	binary.BigEndian.PutUint64(buf[8:16], uint64(r.version))
	if r.secure {
		buf[16] = 1
	}
	copy(buf[headerSize:], r.value)
	return buf
}

func unmarshalRecord(v []byte) (record, error) {
	if len(v) < headerSize {
		return record{}, errors.New("paramstore: corrupt record")
	}
	return record{
		lastModified: time.Unix(0, int64(binary.BigEndian.Uint64(v[:8]))),
		version:      int64(binary.BigEndian.Uint64(v[8:16])),
		secure:       v[16] == 1,
		value:        append([]byte(nil), v[headerSize:]...),
	}, nil
}

// GetParameter returns the named parameter. Values are kept in clear, so
// decrypt has no effect.
func (s *BoltStore) GetParameter(_ context.Context, name string, _ bool) (*cache.Parameter, error) {
	var rec record
	var exists bool
	if err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bucket).Get([]byte(name))
		if v == nil {
			return nil
		}
		exists = true
		var err error
		rec, err = unmarshalRecord(v)
		return err
	}); err != nil {
		return nil, err
	}
	if !exists {
		return nil, cache.ErrNotFound
	}
	return &cache.Parameter{
		Name:         name,
		Value:        string(rec.value),
		LastModified: rec.lastModified,
		Version:      rec.version,
	}, nil
}

// PutParameter writes a parameter, bumping its version. With Overwrite
// unset an existing parameter is left alone and ErrAlreadyExists returned.
func (s *BoltStore) PutParameter(_ context.Context, in cache.PutParameterInput) (*cache.WriteAck, error) {
	if len(in.Name) > MaxNameLength || !cache.ValidName(in.Name) {
		return nil, ErrInvalidName
	}
	tier := TierStandard
	switch {
	case len(in.Value) > AdvancedMaxValue:
		return nil, ErrValueTooLarge
	case len(in.Value) > StandardMaxValue:
		tier = TierAdvanced
	}

	var version int64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if v := b.Get([]byte(in.Name)); v != nil {
			if !in.Overwrite {
				return ErrAlreadyExists
			}
			prev, err := unmarshalRecord(v)
			if err != nil {
				return err
			}
			version = prev.version
		}
		version++
		rec := record{
			lastModified: s.now(),
			version:      version,
			secure:       in.Type == cache.TypeSecureString,
			value:        []byte(in.Value),
		}
		return b.Put([]byte(in.Name), rec.marshal())
	})
	if err != nil {
		return nil, err
	}
	return &cache.WriteAck{Version: version, Tier: tier}, nil
}

// DeleteParameter removes a parameter, returning cache.ErrNotFound if it
// does not exist.
func (s *BoltStore) DeleteParameter(_ context.Context, name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b.Get([]byte(name)) == nil {
			return cache.ErrNotFound
		}
		return b.Delete([]byte(name))
	})
}

var _ cache.ParameterStore = (*BoltStore)(nil)
