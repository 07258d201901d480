package fastrpc

import (
	"encoding/base64"
	"fmt"
)

// EncodeBase64 is like [Encode], but returns the message in standard
// base64 encoding, for transports that only carry text.
func EncodeBase64(method string, params []any, hints Hints) (string, error) {
	bs, err := Encode(method, params, hints)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(bs), nil
}

// DecodeBase64 is like [Decode], but takes a message in standard
// base64 encoding.
func DecodeBase64(s string) (Message, error) {
	bs, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 envelope: %w", err)
	}
	return Decode(bs)
}
