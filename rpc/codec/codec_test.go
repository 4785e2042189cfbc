package codec

import (
	"strings"
	"testing"

	"github.com/mapkv/mapkv/lib/store"
)

func TestRequestRoundTrip(t *testing.T) {
	cases := []Request{
		{Operation: store.OpInsert, Key: "", Value: ""},
		{Operation: store.OpGet, Key: "k", Value: ""},
		{Operation: store.OpUpdate, Key: "key", Value: strings.Repeat("x", 65535)},
	}
	for _, want := range cases {
		payload, err := EncodeRequest(want)
		if err != nil {
			t.Fatalf("EncodeRequest: %v", err)
		}
		got, err := DecodeRequest(payload)
		if err != nil {
			t.Fatalf("DecodeRequest: %v", err)
		}
		if got != want {
			t.Fatalf("round trip mismatch: got %+v want %+v", got, want)
		}
	}
}

func TestResponseRoundTrip(t *testing.T) {
	want := Response{Operation: store.OpGet, Error: store.ErrGetKeyNotFound, Value: "ignored"}
	payload, err := EncodeResponse(want)
	if err != nil {
		t.Fatalf("EncodeResponse: %v", err)
	}
	got, err := DecodeResponse(payload)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, want)
	}
}

func TestEncodeRejectsOversizeString(t *testing.T) {
	_, err := EncodeRequest(Request{Operation: store.OpInsert, Key: "k", Value: strings.Repeat("x", 65536)})
	if err != ErrStringTooLarge {
		t.Fatalf("got %v want ErrStringTooLarge", err)
	}
}

func TestDecodeRequestTruncated(t *testing.T) {
	if _, err := DecodeRequest(nil); err != ErrTruncated {
		t.Fatalf("empty payload: got %v want ErrTruncated", err)
	}
	if _, err := DecodeRequest([]byte{byte(store.OpGet), 0, 5, 'h', 'e'}); err != ErrTruncated {
		t.Fatalf("short string: got %v want ErrTruncated", err)
	}
}

func TestDecodeRequestInvalidOperation(t *testing.T) {
	if _, err := DecodeRequest([]byte{0xFF, 0, 0, 0, 0}); err != ErrInvalidOp {
		t.Fatalf("got %v want ErrInvalidOp", err)
	}
}

func TestDecodeResponseInvalidError(t *testing.T) {
	payload := []byte{byte(store.OpGet), 0xFF, 0, 0}
	if _, err := DecodeResponse(payload); err != ErrInvalidErr {
		t.Fatalf("got %v want ErrInvalidErr", err)
	}
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	payload, _ := EncodeRequest(Request{Operation: store.OpGet, Key: "k"})
	payload = append(payload, 0x00)
	if _, err := DecodeRequest(payload); err != ErrTruncated {
		t.Fatalf("got %v want ErrTruncated", err)
	}
}
