package cache

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// envelope is the value written into the store's single value slot. The
// field names are a compatibility contract with data already stored.
type envelope struct {
	TTL   float64 `json:"TTL"`
	Value string  `json:"Value"`
}

// rawEnvelope distinguishes missing fields from zero values while decoding.
type rawEnvelope struct {
	TTL   *float64 `json:"TTL"`
	Value *string  `json:"Value"`
}

// EncodeEnvelope serializes value together with its lifetime, for example
// {"TTL":60,"Value":"x"}.
func EncodeEnvelope(ttl time.Duration, value string) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("%w: ttl must be greater than 0, got %s", ErrInvalidArgument, ttl)
	}
	b, err := json.Marshal(envelope{TTL: ttl.Seconds(), Value: value})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeEnvelope parses raw and checks it against the store's lastModified
// timestamp. The record is live while now <= lastModified+TTL; past that it
// returns ErrExpired. Anything that is not a two-field envelope with a
// positive TTL returns ErrMalformed.
func DecodeEnvelope(raw string, lastModified, now time.Time) (string, error) {
	var env rawEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.TTL == nil || env.Value == nil {
		return "", fmt.Errorf("%w: missing TTL or Value", ErrMalformed)
	}
	ttl := *env.TTL
	if ttl <= 0 || math.IsNaN(ttl) || math.IsInf(ttl, 0) {
		return "", fmt.Errorf("%w: invalid TTL %v", ErrMalformed, ttl)
	}
	if age := now.Sub(lastModified).Seconds(); age > ttl {
		return "", fmt.Errorf("%w: age %.3fs exceeds ttl %gs", ErrExpired, age, ttl)
	}
	return *env.Value, nil
}
