package paramstore

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leonardcser/ssm-cache/internal/cache"
)

// startServer serves a fresh BoltStore stamping writes with now on a Unix
// socket. Socket paths are length limited, so it avoids t.TempDir's long
// names.
func startServer(t *testing.T, now func() time.Time) (*Client, *BoltStore) {
	t.Helper()
	dir, err := os.MkdirTemp("", "ps")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	store := openTestStore(t)
	store.now = now
	sock := filepath.Join(dir, "s.sock")
	l, err := net.Listen("unix", sock)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, l, store) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Serve error: %v", err)
		}
	})
	return NewClient(sock), store
}

func TestClientServerRoundTrip(t *testing.T) {
	ctx := context.Background()
	stamp := time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC)
	client, _ := startServer(t, func() time.Time { return stamp })

	ack, err := client.PutParameter(ctx, cache.PutParameterInput{
		Name: "/cache/k", Value: "v", Type: cache.TypeSecureString, Overwrite: true, KeyID: "alias/x",
	})
	if err != nil {
		t.Fatalf("PutParameter error: %v", err)
	}
	if ack.Version != 1 || ack.Tier != TierStandard {
		t.Errorf("ack = %+v", ack)
	}

	p, err := client.GetParameter(ctx, "/cache/k", true)
	if err != nil {
		t.Fatalf("GetParameter error: %v", err)
	}
	if p.Value != "v" || p.Version != 1 || !p.LastModified.Equal(stamp) {
		t.Errorf("GetParameter = %+v", p)
	}

	if err := client.DeleteParameter(ctx, "/cache/k"); err != nil {
		t.Fatalf("DeleteParameter error: %v", err)
	}
}

func TestClientMapsErrorCodes(t *testing.T) {
	ctx := context.Background()
	client, _ := startServer(t, time.Now)

	if _, err := client.GetParameter(ctx, "/cache/missing", false); !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("GetParameter error = %v, want ErrNotFound", err)
	}
	if err := client.DeleteParameter(ctx, "/cache/missing"); !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("DeleteParameter error = %v, want ErrNotFound", err)
	}
	if _, err := client.PutParameter(ctx, cache.PutParameterInput{Name: "bad name"}); !errors.Is(err, ErrInvalidName) {
		t.Errorf("PutParameter error = %v, want ErrInvalidName", err)
	}
	in := cache.PutParameterInput{Name: "/cache/k", Value: "v"}
	if _, err := client.PutParameter(ctx, in); err != nil {
		t.Fatal(err)
	}
	if _, err := client.PutParameter(ctx, in); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("PutParameter error = %v, want ErrAlreadyExists", err)
	}
}

func TestClientUnreachable(t *testing.T) {
	client := NewClient(filepath.Join(t.TempDir(), "none.sock"))
	if _, err := client.GetParameter(context.Background(), "/cache/k", true); err == nil {
		t.Fatal("expected dial error")
	}
}

func TestCacheOverDaemon(t *testing.T) {
	ctx := context.Background()
	written := time.Now()
	client, store := startServer(t, func() time.Time { return written })

	now := written
	c := cache.New(client, cache.WithClock(func() time.Time { return now }))
	if _, err := c.Set(ctx, "a/b", "x", time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if v, ok := c.Get(ctx, "a/b"); !ok || v != "x" {
		t.Fatalf("Get = %q, %v; want \"x\", true", v, ok)
	}

	now = written.Add(61 * time.Second)
	if _, ok := c.Get(ctx, "a/b"); ok {
		t.Fatal("Get after expiry hit")
	}
	if _, err := store.GetParameter(ctx, "/cache/a_b", false); !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("expired parameter still stored: %v", err)
	}
	if _, ok := c.Get(ctx, "a/b"); ok {
		t.Fatal("Get on deleted key hit")
	}
}

func TestHandleUnknownOp(t *testing.T) {
	resp := handle(context.Background(), nil, Request{Op: "list"})
	if resp.OK || resp.Error != "unknown op" {
		t.Errorf("handle = %+v, want unknown op error", resp)
	}
}

// failingListener fails every Accept until closed, like a process out of
// file descriptors.
type failingListener struct {
	accepts atomic.Int64
	closed  chan struct{}
	once    sync.Once
}

func (l *failingListener) Accept() (net.Conn, error) {
	l.accepts.Add(1)
	select {
	case <-l.closed:
		return nil, net.ErrClosed
	default:
		return nil, errors.New("accept: too many open files")
	}
}

func (l *failingListener) Close() error {
	l.once.Do(func() { close(l.closed) })
	return nil
}

func (l *failingListener) Addr() net.Addr { return &net.UnixAddr{Name: "failing", Net: "unix"} }

func TestServeBacksOffOnAcceptErrors(t *testing.T) {
	l := &failingListener{closed: make(chan struct{})}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := Serve(ctx, l, nil); err != nil {
		t.Fatalf("Serve error: %v", err)
	}
	// 5+10+20+40ms of delays fit in the window; a busy loop makes millions
	// of calls.
	if n := l.accepts.Load(); n > 20 {
		t.Errorf("Accept called %d times in 100ms, want a backoff between failures", n)
	}
}
