// Package otpcodec implements the RFC 4648 base32 handling used for OTP
// secrets. Encoding never emits padding; decoding is deliberately lenient —
// case-insensitive, padding-tolerant, and silent about characters outside
// the alphabet — because secrets arrive pasted by humans and a decode error
// must never crash a login path. Verification built on top degrades to a
// mismatch instead.
package otpcodec

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// decodeMap maps ASCII bytes to their 5-bit value, 0xFF for anything that is
// not part of the alphabet. Lowercase letters alias their uppercase value.
var decodeMap [256]byte

func init() {
	for i := range decodeMap {
		decodeMap[i] = 0xFF
	}
	for i := 0; i < len(alphabet); i++ {
		decodeMap[alphabet[i]] = byte(i)
	}
	for i := 'a'; i <= 'z'; i++ {
		decodeMap[i] = decodeMap[i-'a'+'A']
	}
}

// Encode returns the RFC 4648 base32 encoding of raw without padding.
func Encode(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}

	out := make([]byte, 0, (len(raw)*8+4)/5)
	var buf uint16
	var bits uint

	for _, b := range raw {
		buf = buf<<8 | uint16(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out = append(out, alphabet[buf>>bits&0x1F])
		}
	}
	if bits > 0 {
		out = append(out, alphabet[buf<<(5-bits)&0x1F])
	}

	return string(out)
}

// Decode returns the bytes recoverable from text. Unrecognized characters
// (including '=' padding and whitespace) are skipped rather than rejected;
// trailing bits that do not fill a byte are dropped. Decode(Encode(b)) == b
// for any b.
func Decode(text string) []byte {
	out := make([]byte, 0, len(text)*5/8)
	var buf uint16
	var bits uint

	for i := 0; i < len(text); i++ {
		v := decodeMap[text[i]]
		if v == 0xFF {
			continue
		}
		buf = buf<<5 | uint16(v)
		bits += 5
		if bits >= 8 {
			bits -= 8
			out = append(out, byte(buf>>bits))
		}
	}

	return out
}
