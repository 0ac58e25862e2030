package cache

import (
	"errors"
	"testing"
	"time"
)

func TestEncodeEnvelope(t *testing.T) {
	tests := []struct {
		ttl   time.Duration
		value string
		want  string
	}{
		{60 * time.Second, "x", `{"TTL":60,"Value":"x"}`},
		{time.Hour, "", `{"TTL":3600,"Value":""}`},
		{1500 * time.Millisecond, "v", `{"TTL":1.5,"Value":"v"}`},
		{time.Second, `say "hi"`, `{"TTL":1,"Value":"say \"hi\""}`},
	}
	for _, tt := range tests {
		got, err := EncodeEnvelope(tt.ttl, tt.value)
		if err != nil {
			t.Fatalf("EncodeEnvelope(%s, %q) error: %v", tt.ttl, tt.value, err)
		}
		if got != tt.want {
			t.Errorf("EncodeEnvelope(%s, %q) = %s, want %s", tt.ttl, tt.value, got, tt.want)
		}
	}
}

func TestEncodeEnvelopeRejectsNonPositiveTTL(t *testing.T) {
	for _, ttl := range []time.Duration{0, -time.Second} {
		if _, err := EncodeEnvelope(ttl, "v"); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("EncodeEnvelope(%s) error = %v, want ErrInvalidArgument", ttl, err)
		}
	}
}

func TestDecodeEnvelope(t *testing.T) {
	written := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		raw     string
		age     time.Duration
		want    string
		wantErr error
	}{
		{name: "live", raw: `{"TTL":60,"Value":"x"}`, age: 59 * time.Second, want: "x"},
		{name: "boundary is live", raw: `{"TTL":60,"Value":"x"}`, age: 60 * time.Second, want: "x"},
		{name: "expired", raw: `{"TTL":60,"Value":"x"}`, age: 60*time.Second + time.Millisecond, wantErr: ErrExpired},
		{name: "fractional ttl", raw: `{"TTL":0.5,"Value":"x"}`, age: 400 * time.Millisecond, want: "x"},
		{name: "empty value", raw: `{"TTL":10,"Value":""}`, want: ""},
		{name: "extra fields ignored", raw: `{"TTL":10,"Value":"x","Other":1}`, want: "x"},
		{name: "clock behind store", raw: `{"TTL":10,"Value":"x"}`, age: -5 * time.Second, want: "x"},
		{name: "plain text", raw: "hello", wantErr: ErrMalformed},
		{name: "empty", raw: "", wantErr: ErrMalformed},
		{name: "null", raw: "null", wantErr: ErrMalformed},
		{name: "array", raw: `[60,"x"]`, wantErr: ErrMalformed},
		{name: "missing value", raw: `{"TTL":60}`, wantErr: ErrMalformed},
		{name: "missing ttl", raw: `{"Value":"x"}`, wantErr: ErrMalformed},
		{name: "string ttl", raw: `{"TTL":"60","Value":"x"}`, wantErr: ErrMalformed},
		{name: "numeric value", raw: `{"TTL":60,"Value":5}`, wantErr: ErrMalformed},
		{name: "zero ttl", raw: `{"TTL":0,"Value":"x"}`, wantErr: ErrMalformed},
		{name: "truncated", raw: `{"TTL":60,"Val`, wantErr: ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeEnvelope(tt.raw, written, written.Add(tt.age))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DecodeEnvelope error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeEnvelope error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DecodeEnvelope = %q, want %q", got, tt.want)
			}
		})
	}
}
