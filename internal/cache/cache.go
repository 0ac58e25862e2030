// Package cache layers TTL semantics on top of a flat parameter store that
// has no expiry of its own.
//
// Each entry is written as a small JSON envelope holding the value and its
// lifetime in seconds. On read the lifetime is compared against the
// store's last-modified timestamp; expired entries are deleted and reported
// as a miss. Every read and write round-trips to the store, nothing is kept
// in memory.
//
// Usage:
//
//	c := cache.New(store, cache.WithBasePath("/cache"))
//	if _, err := c.Set(ctx, "token", "abc", time.Minute); err != nil {
//	    return err
//	}
//	if v, ok := c.Get(ctx, "token"); ok {
//	    // use v
//	}
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const DefaultBasePath = "/cache"

var (
	ErrInvalidArgument = errors.New("cache: invalid argument")
	ErrNotFound        = errors.New("cache: not found")
	ErrExpired         = errors.New("cache: expired")
	ErrMalformed       = errors.New("cache: malformed entry")
)

// Cache is safe for concurrent use by multiple goroutines. Its
// configuration is fixed at construction.
type Cache struct {
	store    ParameterStore
	secret   bool
	basePath string
	keyID    string
	now      func() time.Time
	logf     func(format string, args ...any)
}

type Option func(*Cache)

// WithSecret selects SecureString (true, the default) or String parameters
// and whether reads request decryption.
func WithSecret(secret bool) Option {
	return func(c *Cache) { c.secret = secret }
}

// WithBasePath sets the namespace prefix. A trailing '/' is dropped.
func WithBasePath(p string) Option {
	return func(c *Cache) { c.basePath = strings.TrimRight(p, "/") }
}

// WithKeyID sets the encryption key used for SecureString parameters.
func WithKeyID(id string) Option {
	return func(c *Cache) { c.keyID = id }
}

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithLogger receives a line for every miss with its cause. Get never
// reports causes to its caller.
func WithLogger(logf func(format string, args ...any)) Option {
	return func(c *Cache) { c.logf = logf }
}

func New(store ParameterStore, opts ...Option) *Cache {
	c := &Cache{
		store:    store,
		secret:   true,
		basePath: DefaultBasePath,
		now:      time.Now,
		logf:     func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the parameter name key is stored under.
func (c *Cache) Name(key string) string {
	return Sanitize(c.basePath, key)
}

// Get returns the cached value for key. A missing, expired, malformed or
// unreadable entry is reported the same way, as ok == false.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	v, err := c.lookup(ctx, key)
	if err != nil {
		c.logf("cache miss for %q: %v", key, err)
		return "", false
	}
	return v, true
}

// lookup is Get with the cause of a miss kept.
func (c *Cache) lookup(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: key must not be empty", ErrInvalidArgument)
	}
	name := c.Name(key)
	p, err := c.store.GetParameter(ctx, name, c.secret)
	if err != nil {
		return "", err
	}
	if p == nil {
		return "", ErrNotFound
	}
	v, err := DecodeEnvelope(p.Value, p.LastModified, c.now())
	if errors.Is(err, ErrExpired) {
		// The outcome is ignored: a concurrent reader may already have
		// removed it, or a writer replaced it.
		if derr := c.store.DeleteParameter(ctx, name); derr != nil {
			c.logf("delete expired %s: %v", name, derr)
		}
		return "", err
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

// Set stores value under key for ttl, replacing any existing entry. Invalid
// arguments wrap ErrInvalidArgument; store failures are returned as is.
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) (*WriteAck, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: key must not be empty", ErrInvalidArgument)
	}
	raw, err := EncodeEnvelope(ttl, value)
	if err != nil {
		return nil, err
	}
	in := PutParameterInput{
		Name:      c.Name(key),
		Value:     raw,
		Type:      TypeString,
		Overwrite: true,
	}
	if c.secret {
		in.Type = TypeSecureString
		in.KeyID = c.keyID
	}
	return c.store.PutParameter(ctx, in)
}
