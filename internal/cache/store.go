package cache

import (
	"context"
	"time"
)

// ParameterType selects how the backing store persists a value.
type ParameterType string

const (
	TypeString       ParameterType = "String"
	TypeSecureString ParameterType = "SecureString"
)

// Parameter is a record as reported by the backing store. LastModified is
// stamped by the store, not by this package.
type Parameter struct {
	Name         string
	Value        string
	LastModified time.Time
	Version      int64
}

type PutParameterInput struct {
	Name      string
	Value     string
	Type      ParameterType
	Overwrite bool
	// KeyID names the encryption key for TypeSecureString. Empty means the
	// store default.
	KeyID string
}

// WriteAck is the metadata the store returns for a successful write.
type WriteAck struct {
	Version int64
	Tier    string
}

// ParameterStore defines the minimal flat key-value contract the cache is
// layered on. A missing parameter must be reported with an error matching
// ErrNotFound. Implementations must be safe for concurrent use.
type ParameterStore interface {
	GetParameter(ctx context.Context, name string, decrypt bool) (*Parameter, error)
	PutParameter(ctx context.Context, in PutParameterInput) (*WriteAck, error)
	DeleteParameter(ctx context.Context, name string) error
}
