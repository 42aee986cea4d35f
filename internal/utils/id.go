package utils

import (
	"crypto/rand"
	"strconv"
	"time"
)

const codeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// RoomCode returns a short, human-shareable lowercase base36 code.
func RoomCode(length int) string {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		// Fallback to timestamp if crypto/rand is unavailable.
		ts := strconv.FormatInt(time.Now().UnixNano(), 36)
		if len(ts) > length {
			ts = ts[len(ts)-length:]
		}
		return ts
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf)
}
