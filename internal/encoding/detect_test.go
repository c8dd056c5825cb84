package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/MrJamesThe3rd/syndic/internal/encoding"
)

func decode(t *testing.T, input []byte) (string, encoding.Charset) {
	t.Helper()

	r, charset, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got), charset
}

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	input := "Date,Deal,Status\n2025-01-01,Café Olé,paid\n"

	got, charset := decode(t, []byte(input))
	assert.Equal(t, input, got)
	assert.Equal(t, encoding.UTF8, charset)
}

func TestNewUTF8Reader_Windows1252(t *testing.T) {
	// "Café;paid\n" with é = 0xE9 in Windows-1252.
	input := []byte{'C', 'a', 'f', 0xE9, ';', 'p', 'a', 'i', 'd', '\n'}

	got, charset := decode(t, input)
	assert.Equal(t, "Café;paid\n", got)
	assert.NotEqual(t, encoding.UTF8, charset)
}

func TestNewUTF8Reader_UTF8BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Date,Deal\n")...)

	got, charset := decode(t, input)
	assert.Equal(t, "Date,Deal\n", got)
	assert.Equal(t, encoding.UTF8, charset)
}

func TestNewUTF8Reader_UTF16LE(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()

	input, err := enc.Bytes([]byte("Date;Deal\nGreen Café;paid\n"))
	require.NoError(t, err)

	got, charset := decode(t, input)
	assert.Equal(t, "Date;Deal\nGreen Café;paid\n", got)
	assert.Equal(t, encoding.UTF16LE, charset)
}

func TestNewUTF8Reader_LargeInput(t *testing.T) {
	input := bytes.Repeat([]byte("2025-01-01,Green Cafe,paid\n"), 500)

	got, _ := decode(t, input)
	assert.Len(t, got, len(input))
}

func TestNewUTF8Reader_Empty(t *testing.T) {
	got, charset := decode(t, nil)
	assert.Empty(t, got)
	assert.Equal(t, encoding.UTF8, charset)
}
