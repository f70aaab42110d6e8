package importer_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/MrJamesThe3rd/budgetree/internal/importer"
)

func readAll(t *testing.T, in []byte) string {
	t.Helper()

	r, err := importer.NewUTF8Reader(bytes.NewReader(in))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got)
}

func TestNewUTF8Reader(t *testing.T) {
	const text = "Descrição;Montante\nCafé;12,50\n"

	latin1, err := charmap.Windows1252.NewEncoder().Bytes([]byte(text))
	require.NoError(t, err)

	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(text))
	require.NoError(t, err)

	type testCase struct {
		name  string
		input []byte
	}

	tests := []testCase{
		{name: "UTF8Passthrough", input: []byte(text)},
		{name: "UTF8BOM", input: append([]byte{0xEF, 0xBB, 0xBF}, text...)},
		{name: "UTF16LEBOM", input: utf16},
		{name: "Windows1252", input: latin1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, text, readAll(t, tt.input))
		})
	}
}

func TestNewUTF8Reader_Empty(t *testing.T) {
	assert.Empty(t, readAll(t, nil))
}

func TestNewUTF8Reader_RuneCutAtWindow(t *testing.T) {
	// 4095 ASCII bytes then a two byte rune straddling the sniff window.
	input := append(bytes.Repeat([]byte("a"), 4095), "ç\n"...)

	assert.Equal(t, string(input), readAll(t, input))
}
