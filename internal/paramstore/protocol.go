package paramstore

import "time"

// Simple JSON protocol for the parameter daemon over a Unix domain socket.
// One request -> one response using json.Encoder/Decoder per connection.

const (
	OpGet    = "get"
	OpPut    = "put"
	OpDelete = "delete"
)

// Response codes the client maps back to sentinel errors.
const (
	CodeNotFound      = "not_found"
	CodeAlreadyExists = "already_exists"
	CodeInvalidName   = "invalid_name"
	CodeTooLarge      = "too_large"
)

type Request struct {
	Op        string `json:"op"` // "get" | "put" | "delete"
	Name      string `json:"name"`
	Value     string `json:"value,omitempty"`
	Type      string `json:"type,omitempty"`
	Overwrite bool   `json:"overwrite,omitempty"`
	KeyID     string `json:"key_id,omitempty"`
	Decrypt   bool   `json:"decrypt,omitempty"`
}

type Response struct {
	OK           bool      `json:"ok"`
	Value        string    `json:"value,omitempty"`
	LastModified time.Time `json:"last_modified,omitzero"`
	Version      int64     `json:"version,omitempty"`
	Tier         string    `json:"tier,omitempty"`
	Code         string    `json:"code,omitempty"`
	Error        string    `json:"error,omitempty"`
}
