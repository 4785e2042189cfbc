package client

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/mapkv/mapkv/lib/store"
	"github.com/mapkv/mapkv/rpc/codec"
)

// TestOversizeKeyRejectedWithoutContactingServer verifies that a key over
// the length limit never causes the client to dial out: the listener fails
// the test the moment it accepts a connection.
func TestOversizeKeyRejectedWithoutContactingServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	accepted := make(chan struct{}, 1)
	go func() {
		if conn, err := ln.Accept(); err == nil {
			conn.Close()
			accepted <- struct{}{}
		}
	}()

	c := New(time.Second)
	oversizeKey := strings.Repeat("k", store.MaxKeyLength+1)
	_, err = c.Send(ln.Addr().String(), codec.Request{Operation: store.OpGet, Key: oversizeKey})
	if err == nil {
		t.Fatalf("expected an error for an oversize key")
	}

	select {
	case <-accepted:
		t.Fatalf("client dialed the server despite an oversize key")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestOversizeValueRejectedWithoutContactingServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	accepted := make(chan struct{}, 1)
	go func() {
		if conn, err := ln.Accept(); err == nil {
			conn.Close()
			accepted <- struct{}{}
		}
	}()

	c := New(time.Second)
	oversizeValue := strings.Repeat("v", store.MaxWireValueLength+1)
	_, err = c.Send(ln.Addr().String(), codec.Request{Operation: store.OpInsert, Key: "k", Value: oversizeValue})
	if err == nil {
		t.Fatalf("expected an error for an oversize value")
	}

	select {
	case <-accepted:
		t.Fatalf("client dialed the server despite an oversize value")
	case <-time.After(50 * time.Millisecond):
	}
}
