// Package textcodec converts between raw byte buffers and their text forms.
//
// Conversions:
//   - DecodeUTF8: bytes to text, with a lossy legacy path for invalid UTF-8
//   - ToBase64, FromBase64: standard base64, byte-exact round trip
//   - ToBinaryString, FromBinaryString: one code point 0-255 per byte
//
// Every function is stateless and safe for concurrent use.
//
// Example Usage:
//
//	encoded := textcodec.ToBase64(payload)
//	decoded, err := textcodec.FromBase64(encoded)
//	text := textcodec.DecodeUTF8(decoded)
package textcodec
