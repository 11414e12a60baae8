// Package uniuri generates random strings for generated credentials.
package uniuri

import (
	"crypto/rand"
	"errors"
	"fmt"
)

// PasswordLen gives a little over 95 bits of entropy with Chars.
const PasswordLen = 16

// Chars are the characters New picks from.
const Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// ErrCharset is returned for an empty or oversized character set.
var ErrCharset = errors.New("character set must hold 1 to 256 bytes")

// New returns a random string of PasswordLen characters from Chars.
func New() (string, error) {
	return NewLenChars(PasswordLen, Chars)
}

// NewLenChars returns a random string of length bytes drawn from chars.
// Bytes that would bias the distribution are rejected and redrawn.
func NewLenChars(length int, chars string) (string, error) {
	n := len(chars)
	if n == 0 || n > 256 {
		return "", ErrCharset
	}

	if length <= 0 {
		return "", nil
	}

	// largest multiple of n that fits into a byte
	limit := 256 - (256 % n)
	out := make([]byte, 0, length)
	buf := make([]byte, length+length/4+1)

	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}

		for _, b := range buf {
			if int(b) >= limit {
				continue
			}

			out = append(out, chars[int(b)%n])
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}
