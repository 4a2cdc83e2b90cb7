package walletauth

import "encoding/base64"

// Token segments use the URL-safe base64 alphabet without padding, the
// encoding standard JWT consumers expect.

// EncodeSegment encodes raw bytes into a token segment.
func EncodeSegment(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeSegment inverts EncodeSegment byte-for-byte.
func DecodeSegment(segment string) ([]byte, error) {
	data, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		return nil, newError(ErrCodeDecode, err)
	}
	return data, nil
}
