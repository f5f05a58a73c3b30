package edi

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const (
	DUMP_ROW_LEN   = 0x10
	DUMP_CHUNK_LEN = 4
)

// ByteReader reads a single byte from an address space.
type ByteReader func(addr uint32) (byte, error)

// XDATAReader adapts Read to a ByteReader.
func (e *EDI) XDATAReader() ByteReader {
	return func(addr uint32) (byte, error) {
		if addr >= XDATA_SIZE {
			return 0, errors.Wrapf(ErrAddressRange, "XDATA address %#x", addr)
		}
		return e.Read(uint16(addr))
	}
}

func (e *EDI) FlashReader() ByteReader {
	return e.ReadFlash
}

// Dump writes XDATA [start, end) as a hex grid.
func (e *EDI) Dump(w io.Writer, start, end uint32) error {
	return Dump(w, e.XDATAReader(), start, end)
}

// DumpFlash writes flash [start, end) as a hex grid.
func (e *EDI) DumpFlash(w io.Writer, start, end uint32) error {
	return Dump(w, e.FlashReader(), start, end)
}

// Dump renders [start, end) read through read, 16 bytes per line:
//
//	0020: 00 01 02 03  04 05 06 07  08 09 0a 0b  0c 0d 0e 0f
//
// start is rounded down to a line boundary. Addresses are printed with 4
// digits if end <= 0x10000, with 8 otherwise. A failed read aborts before
// the incomplete line is written.
func Dump(w io.Writer, read ByteReader, start, end uint32) error {
	wide := end > XDATA_SIZE
	start -= start % DUMP_ROW_LEN

	row := make([]byte, DUMP_ROW_LEN)
	for yaddr := uint64(start); yaddr < uint64(end); yaddr += DUMP_ROW_LEN {
		for i := range row {
			b, err := read(uint32(yaddr) + uint32(i))
			if err != nil {
				return err
			}
			row[i] = b
		}
		if _, err := io.WriteString(w, FormatRow(uint32(yaddr), row, wide)+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// FormatRow renders one dump line without the trailing newline.
func FormatRow(addr uint32, data []byte, wide bool) string {
	var sb strings.Builder
	if wide {
		fmt.Fprintf(&sb, "%08x:", addr)
	} else {
		fmt.Fprintf(&sb, "%04x:", addr)
	}
	for i, b := range data {
		if i > 0 && i%DUMP_CHUNK_LEN == 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, " %02x", b)
	}
	return sb.String()
}

// ReadRange collects the raw bytes of [start, end).
func ReadRange(read ByteReader, start, end uint32) ([]byte, error) {
	if end < start {
		return nil, errors.Wrapf(ErrAddressRange, "end %#x before start %#x", end, start)
	}
	res := make([]byte, 0, end-start)
	for addr := uint64(start); addr < uint64(end); addr++ {
		b, err := read(uint32(addr))
		if err != nil {
			return res, err
		}
		res = append(res, b)
	}
	return res, nil
}
