// Package fragments provides low-level encoding and decoding helpers
// to construct and parse FastRPC messages.
//
// The provided encoder and decoder are very low level, and only know
// about tag bytes, length fields and primitive payloads. It is the
// caller's responsibility to assemble valid FastRPC messages with
// them.
//
// You should not need to use this package at all, unless you are
// writing your own codec on top of the FastRPC wire format. The
// fastrpc package uses it to implement Encode and Decode.
package fragments
