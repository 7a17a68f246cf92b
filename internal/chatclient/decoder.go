package chatclient

import "unicode/utf8"

// StreamDecoder decodes a UTF-8 byte stream arriving in arbitrary chunks.
// A multi-byte character split across chunk boundaries is carried over and
// combined with the next chunk rather than decoded as corruption.
type StreamDecoder struct {
	carry []byte
}

// Decode returns the text for every complete rune available once chunk is
// appended to any carried-over bytes. Trailing bytes that begin a rune whose
// continuation has not arrived yet are held back for the next call.
func (d *StreamDecoder) Decode(chunk []byte) string {
	buf := chunk
	if len(d.carry) > 0 {
		buf = append(d.carry, chunk...)
	}

	tail := incompleteTailLen(buf)
	complete := buf[:len(buf)-tail]
	d.carry = append([]byte(nil), buf[len(buf)-tail:]...)

	return string(complete)
}

// Flush returns any bytes still held back. A non-empty result means the
// stream ended mid-rune; decoding it yields replacement characters, matching
// how an incremental text decoder finalizes.
func (d *StreamDecoder) Flush() string {
	if len(d.carry) == 0 {
		return ""
	}
	s := string(d.carry)
	d.carry = nil
	return s
}

// incompleteTailLen reports how many trailing bytes of buf form the start of
// a rune whose remaining bytes have not arrived. Invalid sequences are not
// held back; only a genuinely truncated rune is.
func incompleteTailLen(buf []byte) int {
	n := len(buf)
	// A rune is at most utf8.UTFMax bytes, so only the last few bytes can
	// belong to a truncated one.
	start := n - utf8.UTFMax + 1
	if start < 0 {
		start = 0
	}

	for i := n - 1; i >= start; i-- {
		b := buf[i]
		if b < utf8.RuneSelf {
			// ASCII never needs continuation.
			return 0
		}
		if b&0xC0 == 0x80 {
			// Continuation byte, keep scanning for the rune start.
			continue
		}

		expected := runeLen(b)
		if expected > n-i {
			// Rune start with too few bytes so far: truncated.
			return n - i
		}
		// The rune starting here is fully present (or invalid, in which
		// case it is passed through rather than buffered forever).
		return 0
	}

	return 0
}

// runeLen returns the encoded length implied by a UTF-8 leading byte.
func runeLen(b byte) int {
	switch {
	case b&0xE0 == 0xC0:
		return 2
	case b&0xF0 == 0xE0:
		return 3
	case b&0xF8 == 0xF0:
		return 4
	default:
		return 1
	}
}
