// Package encoding turns uploaded remittance files of unknown charset into UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Charset names a detected input encoding.
type Charset string

const (
	UTF8        Charset = "UTF-8"
	UTF16LE     Charset = "UTF-16LE"
	UTF16BE     Charset = "UTF-16BE"
	Windows1252 Charset = "windows-1252"
	ISO88599    Charset = "ISO-8859-9"
	ISO885915   Charset = "ISO-8859-15"
)

const sniffLen = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

var decoders = map[Charset]encoding.Encoding{
	UTF16LE:     unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	UTF16BE:     unicode.UTF16(unicode.BigEndian, unicode.UseBOM),
	Windows1252: charmap.Windows1252,
	ISO88599:    charmap.ISO8859_9,
	ISO885915:   charmap.ISO8859_15,
}

// Detect guesses the charset of a file prefix: byte order mark first, then
// UTF-8 validity, then chardet, falling back to Windows-1252.
func Detect(prefix []byte) Charset {
	switch {
	case bytes.HasPrefix(prefix, bomUTF8):
		return UTF8
	case bytes.HasPrefix(prefix, bomUTF16LE):
		return UTF16LE
	case bytes.HasPrefix(prefix, bomUTF16BE):
		return UTF16BE
	case utf8.Valid(prefix):
		return UTF8
	}

	result, err := chardet.NewTextDetector().DetectBest(prefix)
	if err == nil {
		switch result.Charset {
		case "UTF-8":
			return UTF8
		case "ISO-8859-1", "windows-1252":
			return Windows1252
		case "ISO-8859-9":
			return ISO88599
		case "ISO-8859-15":
			return ISO885915
		}
	}

	return Windows1252
}

// NewUTF8Reader decodes r to UTF-8 based on what Detect reports for its first
// bytes. A UTF-8 byte order mark is dropped.
func NewUTF8Reader(r io.Reader) (io.Reader, Charset, error) {
	br := bufio.NewReaderSize(r, sniffLen)

	prefix, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("peek: %w", err)
	}

	charset := Detect(prefix)

	if charset == UTF8 {
		if bytes.HasPrefix(prefix, bomUTF8) {
			_, _ = br.Discard(len(bomUTF8))
		}

		return br, charset, nil
	}

	return transform.NewReader(br, decoders[charset].NewDecoder()), charset, nil
}
