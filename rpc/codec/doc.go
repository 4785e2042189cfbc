// Package codec encodes and decodes mapkv's wire payloads:
//
//	Request  := u8 operation , String key , String value
//	Response := u8 operation , u8 error   , String value
//	String   := u16 len , bytes[len]
//
// All fields are big-endian. The codec only ever sees a payload already
// separated from its 8-byte frame length by the caller (rpc/session,
// rpc/client) — framing the payload itself is not this package's job, see
// rpc/common.ReadFrame/WriteFrame for why the frame length uses native
// byte order instead.
package codec
