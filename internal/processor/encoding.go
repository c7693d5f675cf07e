package processor

import (
	"bytes"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// Encoding is the on-disk text encoding of a file. Files are written back in
// the encoding they were read in, BOM included.
type Encoding string

const (
	EncodingUTF8    Encoding = "utf-8"
	EncodingUTF8BOM Encoding = "utf-8-bom"
	EncodingUTF16LE Encoding = "utf-16le"
	EncodingUTF16BE Encoding = "utf-16be"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

func detectEncoding(raw []byte) Encoding {
	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		return EncodingUTF8BOM
	case bytes.HasPrefix(raw, bomUTF16LE):
		return EncodingUTF16LE
	case bytes.HasPrefix(raw, bomUTF16BE):
		return EncodingUTF16BE
	default:
		return EncodingUTF8
	}
}

func (e Encoding) codec() encoding.Encoding {
	switch e {
	case EncodingUTF8BOM:
		return unicode.UTF8BOM
	case EncodingUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
	case EncodingUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	default:
		return nil
	}
}

// decode returns the content as text. ok is false when the bytes are not
// text in the detected encoding; such files are treated as binary.
func decode(raw []byte) (text string, enc Encoding, ok bool) {
	enc = detectEncoding(raw)

	switch enc {
	case EncodingUTF8:
		if looksBinary(raw) {
			return "", enc, false
		}
		return string(raw), enc, true

	case EncodingUTF8BOM:
		body := raw[len(bomUTF8):]
		if looksBinary(body) {
			return "", enc, false
		}
		return string(body), enc, true
	}

	decoded, err := enc.codec().NewDecoder().Bytes(raw)
	if err != nil || looksBinary(decoded) {
		return "", enc, false
	}
	// invalid UTF-16 decodes to U+FFFD; refuse what would not survive a round trip
	back, err := encode(string(decoded), enc)
	if err != nil || !bytes.Equal(back, raw) {
		return "", enc, false
	}
	return string(decoded), enc, true
}

func encode(text string, enc Encoding) ([]byte, error) {
	codec := enc.codec()
	if codec == nil {
		return []byte(text), nil
	}
	if !utf8.ValidString(text) {
		return nil, errors.Errorf("encoding %s: content is not valid UTF-8", enc)
	}
	out, err := codec.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, errors.Errorf("encoding %s: %w", enc, err)
	}
	return out, nil
}
