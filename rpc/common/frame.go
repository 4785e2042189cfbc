package common

import (
	"encoding/binary"
	"io"
)

// ReadFrame reads one length-prefixed payload from r, shared by rpc/session
// (server side) and rpc/client. The 8-byte length itself is read in the
// host's native byte order — an intentional reproduction of the original
// implementation's behavior (see DESIGN.md) — while everything inside the
// payload is big-endian, decoded by rpc/codec.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [8]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.NativeEndian.Uint64(lenBuf[:])

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// WriteFrame writes payload to w prefixed by its native-byte-order 8-byte
// length.
func WriteFrame(w io.Writer, payload []byte) error {
	var lenBuf [8]byte
	binary.NativeEndian.PutUint64(lenBuf[:], uint64(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}
