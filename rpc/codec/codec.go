package codec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/mapkv/mapkv/lib/store"
)

// Codec failures. ErrTruncated, ErrInvalidOp and ErrInvalidErr come only from
// decoding and never appear in a successfully-decoded Response's Error field;
// the caller (rpc/session, rpc/client) treats any of them as a transport-tier
// failure and closes the connection. ErrStringTooLarge comes only from
// encoding, for a string longer than a u16 length prefix can carry.
var (
	ErrTruncated      = errors.New("codec: payload truncated")
	ErrInvalidOp      = errors.New("codec: invalid operation byte")
	ErrInvalidErr     = errors.New("codec: invalid error byte")
	ErrStringTooLarge = fmt.Errorf("codec: string exceeds %d bytes", store.MaxWireValueLength)
)

// Request is the decoded form of a client request payload.
type Request struct {
	Operation store.Operation
	Key       string
	Value     string
}

// Response is the decoded form of a server response payload.
type Response struct {
	Operation store.Operation
	Error     store.Error
	Value     string
}

// EncodeRequest renders r as a payload ready to be length-prefixed and sent.
func EncodeRequest(r Request) ([]byte, error) {
	buf := make([]byte, 0, 1+2+len(r.Key)+2+len(r.Value))
	buf = append(buf, byte(r.Operation))
	var err error
	if buf, err = appendString(buf, r.Key); err != nil {
		return nil, err
	}
	if buf, err = appendString(buf, r.Value); err != nil {
		return nil, err
	}
	return buf, nil
}

// EncodeResponse renders r as a payload ready to be length-prefixed and sent.
func EncodeResponse(r Response) ([]byte, error) {
	buf := make([]byte, 0, 1+1+2+len(r.Value))
	buf = append(buf, byte(r.Operation), byte(r.Error))
	buf, err := appendString(buf, r.Value)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// DecodeRequest parses a request payload previously produced by
// EncodeRequest (or an equivalent client).
func DecodeRequest(payload []byte) (Request, error) {
	var r Request
	op, rest, err := readByte(payload)
	if err != nil {
		return r, err
	}
	if op > byte(store.OpGet) {
		return r, ErrInvalidOp
	}
	r.Operation = store.Operation(op)

	key, rest, err := readString(rest)
	if err != nil {
		return r, err
	}
	r.Key = key

	value, rest, err := readString(rest)
	if err != nil {
		return r, err
	}
	r.Value = value

	if len(rest) != 0 {
		return r, ErrTruncated // trailing garbage: treat the same as a malformed frame
	}
	return r, nil
}

// DecodeResponse parses a response payload previously produced by
// EncodeResponse (or an equivalent server).
func DecodeResponse(payload []byte) (Response, error) {
	var r Response
	op, rest, err := readByte(payload)
	if err != nil {
		return r, err
	}
	if op > byte(store.OpGet) {
		return r, ErrInvalidOp
	}
	r.Operation = store.Operation(op)

	ecode, rest, err := readByte(rest)
	if err != nil {
		return r, err
	}
	if ecode > byte(store.ErrInvalidValueLength) {
		return r, ErrInvalidErr
	}
	r.Error = store.Error(ecode)

	value, rest, err := readString(rest)
	if err != nil {
		return r, err
	}
	r.Value = value

	if len(rest) != 0 {
		return r, ErrTruncated
	}
	return r, nil
}

func appendString(buf []byte, s string) ([]byte, error) {
	if len(s) > store.MaxWireValueLength {
		return nil, ErrStringTooLarge
	}
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(s)))
	buf = append(buf, lenBuf[:]...)
	buf = append(buf, s...)
	return buf, nil
}

func readByte(b []byte) (byte, []byte, error) {
	if len(b) < 1 {
		return 0, nil, ErrTruncated
	}
	return b[0], b[1:], nil
}

func readString(b []byte) (string, []byte, error) {
	if len(b) < 2 {
		return "", nil, ErrTruncated
	}
	n := int(binary.BigEndian.Uint16(b))
	b = b[2:]
	if len(b) < n {
		return "", nil, ErrTruncated
	}
	return string(b[:n]), b[n:], nil
}
