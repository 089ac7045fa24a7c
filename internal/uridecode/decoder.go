package uridecode

import (
	"bytes"
	"errors"
)

var ErrBadEscape = errors.New("invalid urlencoded sequence")

// halfbyte holds the value of a hex digit plus one, so zero marks a non-hex character.
var halfbyte = func() (table [256]byte) {
	for c := '0'; c <= '9'; c++ {
		table[c] = byte(c-'0') + 1
	}

	for c := 'a'; c <= 'f'; c++ {
		table[c] = byte(c-'a') + 11
		table[c-'a'+'A'] = byte(c-'a') + 11
	}

	return table
}()

// Decode normalizes the URI by translating escaped characters into their
// true form. If nothing is escaped, src is returned as is
func Decode(src, buff []byte) ([]byte, error) {
	for i := bytes.IndexByte(src, '%'); i != -1; i = bytes.IndexByte(src, '%') {
		if i+2 >= len(src) {
			return nil, ErrBadEscape
		}

		hi, lo := halfbyte[src[i+1]], halfbyte[src[i+2]]
		if hi == 0 || lo == 0 {
			return nil, ErrBadEscape
		}

		buff = append(buff, src[:i]...)
		buff = append(buff, (hi-1)<<4|(lo-1))
		src = src[i+3:]
	}

	if len(buff) == 0 {
		return src, nil
	}

	return append(buff, src...), nil
}
