package paramstore

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"time"

	"github.com/leonardcser/ssm-cache/internal/cache"
)

const maxAcceptDelay = time.Second

// Serve accepts connections on l and answers requests against store until
// ctx is cancelled or l is closed. Failed accepts are retried with a delay
// doubling from 5ms up to one second.
func Serve(ctx context.Context, l net.Listener, store cache.ParameterStore) error {
	go func() {
		<-ctx.Done()
		_ = l.Close()
	}()
	var delay time.Duration
	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			if delay == 0 {
				delay = 5 * time.Millisecond
			} else {
				delay = min(2*delay, maxAcceptDelay)
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(delay):
			}
			continue
		}
		delay = 0
		go handleConn(ctx, conn, store)
	}
}

func handleConn(ctx context.Context, conn net.Conn, store cache.ParameterStore) {
	defer conn.Close()
	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)
	for {
		var req Request
		if err := dec.Decode(&req); err != nil {
			return
		}
		_ = enc.Encode(handle(ctx, store, req))
	}
}

func handle(ctx context.Context, store cache.ParameterStore, req Request) Response {
	switch req.Op {
	case OpGet:
		p, err := store.GetParameter(ctx, req.Name, req.Decrypt)
		if err != nil {
			return errorResponse(err)
		}
		return Response{OK: true, Value: p.Value, LastModified: p.LastModified, Version: p.Version}
	case OpPut:
		ack, err := store.PutParameter(ctx, cache.PutParameterInput{
			Name:      req.Name,
			Value:     req.Value,
			Type:      cache.ParameterType(req.Type),
			Overwrite: req.Overwrite,
			KeyID:     req.KeyID,
		})
		if err != nil {
			return errorResponse(err)
		}
		return Response{OK: true, Version: ack.Version, Tier: ack.Tier}
	case OpDelete:
		if err := store.DeleteParameter(ctx, req.Name); err != nil {
			return errorResponse(err)
		}
		return Response{OK: true}
	default:
		return Response{OK: false, Error: "unknown op"}
	}
}

func errorResponse(err error) Response {
	return Response{OK: false, Code: codeOf(err), Error: err.Error()}
}

var codes = []struct {
	code string
	err  error
}{
	{CodeNotFound, cache.ErrNotFound},
	{CodeAlreadyExists, ErrAlreadyExists},
	{CodeInvalidName, ErrInvalidName},
	{CodeTooLarge, ErrValueTooLarge},
}

func codeOf(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}

// errorOf is the inverse of codeOf; unknown codes become a plain error
// carrying the server's message.
func errorOf(code, msg string) error {
	for _, c := range codes {
		if c.code == code {
			return c.err
		}
	}
	if msg == "" {
		msg = "paramstore: request failed"
	}
	return errors.New(msg)
}
