package processor

import (
	"bytes"
	"unicode/utf8"
)

const (
	// sniffLen is how much of a file the control-byte ratio is computed on
	sniffLen = 8192
	// controlThreshold is the share of control bytes above which a file is binary
	controlThreshold = 0.30
)

// looksBinary classifies decoded content. It is binary when it contains a
// NUL byte anywhere, is not valid UTF-8, or when more than controlThreshold
// of its first sniffLen bytes are control characters other than common
// whitespace and ESC.
func looksBinary(b []byte) bool {
	if bytes.IndexByte(b, 0) != -1 {
		return true
	}
	if !utf8.Valid(b) {
		return true
	}

	sample := b
	if len(sample) > sniffLen {
		sample = sample[:sniffLen]
	}
	if len(sample) == 0 {
		return false
	}

	control := 0
	for _, c := range sample {
		switch {
		case c == '\t', c == '\n', c == '\r', c == '\f', c == '\v', c == 0x1b:
		case c < 0x20, c == 0x7f:
			control++
		}
	}
	return float64(control)/float64(len(sample)) > controlThreshold
}
