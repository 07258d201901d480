// Package fastrpc implements the FastRPC binary wire format.
//
// FastRPC is a compact, self-describing encoding of RPC calls and
// responses. Every value starts with a tag byte whose high 5 bits are
// the value's type, and whose low 3 bits carry a length or value.
// Integers and lengths are stored as little-endian magnitudes using as
// few bytes as possible.
//
// [Encode] produces call messages from ordinary Go values, and
// [Decode] parses call and response messages into a generic value
// tree. The package performs no I/O, and has no notion of transports,
// method dispatch or connections. Callers that need to carry messages
// over text channels can use [EncodeBase64] and [DecodeBase64].
//
// # Protocol versions
//
// There are three dialects of the wire format, selected by the
// version number in the message header. Version 1 has no null type
// and stores lengths without the implicit extra byte. Version 3
// stores integers in zigzag form and uses 64-bit datetime
// timestamps. Every other version, including 2.1 which [Encode] always
// produces, uses the version 2 rules.
//
// # Hints
//
// Some Go values do not map unambiguously to a FastRPC type: an
// integral float64 could be an integer or a double, and a []int could
// be an array or a binary. Encode resolves the ambiguity using
// [Hints], which assign a [Hint] to values by their path within the
// call parameters.
//
// A path is a sequence of segments joined by ".". The first segment
// is the index of the call parameter, and further segments are struct
// member names and array indices. For example, in a call with
// parameters
//
//	"login", Struct{{"scores", []int{1, 2}}}
//
// the path "1.scores" addresses the []int, and "1.scores.0" its first
// element. [Path] builds paths from segments.
//
// Hints are only used while encoding. Decoding needs no hints,
// because the wire format records the type of every value.
package fastrpc
