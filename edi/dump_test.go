package edi

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lowNibble(addr uint32) (byte, error) {
	return byte(addr & 0x0f), nil
}

func TestFormatRow(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	assert.Equal(t, "0020: 00 01 02 03  04 05 06 07  08 09 0a 0b  0c 0d 0e 0f", FormatRow(0x20, data, false))
	assert.Equal(t, "00010020: 00 01 02 03  04 05 06 07  08 09 0a 0b  0c 0d 0e 0f", FormatRow(0x10020, data, true))
}

func TestDumpRoundsStart(t *testing.T) {
	var reads []uint32
	read := func(addr uint32) (byte, error) {
		reads = append(reads, addr)
		return lowNibble(addr)
	}

	var out bytes.Buffer
	require.NoError(t, Dump(&out, read, 0x3, 0x14))

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "0000: "))
	assert.True(t, strings.HasPrefix(lines[1], "0010: "))
	require.Len(t, reads, 32)
	for i, a := range reads {
		assert.Equal(t, uint32(i), a)
	}
}

func TestDumpRow(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Dump(&out, lowNibble, 0x20, 0x30))
	assert.Equal(t, "0020: 00 01 02 03  04 05 06 07  08 09 0a 0b  0c 0d 0e 0f\n", out.String())
}

func TestDumpAddressWidth(t *testing.T) {
	tests := []struct {
		name       string
		start, end uint32
		prefix     string
	}{
		{"xdata end", 0xfff0, 0x10000, "fff0: "},
		{"above 64k", 0xfff0, 0x10001, "0000fff0: "},
		{"flash", 0x1fff0, 0x20000, "0001fff0: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, Dump(&out, lowNibble, tt.start, tt.end))
			assert.True(t, strings.HasPrefix(out.String(), tt.prefix), out.String())
		})
	}
}

func TestDumpEmpty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Dump(&out, lowNibble, 0x20, 0x20))
	assert.Empty(t, out.String())
}

func TestDumpAbortsOnReadError(t *testing.T) {
	read := func(addr uint32) (byte, error) {
		if addr == 0x15 {
			return 0, &TimeoutError{Addr: uint16(addr), Window: READ_WINDOW_MAX}
		}
		return lowNibble(addr)
	}

	var out bytes.Buffer
	err := Dump(&out, read, 0, 0x40)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.Equal(t, "0000: 00 01 02 03  04 05 06 07  08 09 0a 0b  0c 0d 0e 0f\n", out.String())
}

func TestReadRange(t *testing.T) {
	data, err := ReadRange(lowNibble, 0x0e, 0x12)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0e, 0x0f, 0x00, 0x01}, data)

	_, err = ReadRange(lowNibble, 0x10, 0x0f)
	assert.True(t, errors.Is(err, ErrAddressRange))
}
