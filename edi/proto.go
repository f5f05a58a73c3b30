package edi

import "fmt"

/*
EDI request frames (MSB first):
guint8		cmd;
guint8		addr[3];
guint8		data;		// write only

A read response carries a 0x50 marker somewhere in the inbound stream, the
register value follows the marker.
*/

type Command byte

const (
	COMMAND_READ  Command = 0x30
	COMMAND_WRITE Command = 0x40
)

func (c Command) String() string {
	switch c {
	case COMMAND_READ:
		return "READ"
	case COMMAND_WRITE:
		return "WRITE"
	default:
		return fmt.Sprintf("Command(%#02x)", byte(c))
	}
}

const (
	RESPONSE_SENTINEL byte = 0x50

	READ_WINDOW_START = 4
	READ_WINDOW_STEP  = 2
	READ_WINDOW_MAX   = 30

	HANDSHAKE_READ_LEN = 32
)

// Embedded flash controller registers in XDATA
type Register uint16

const (
	REGISTER_EFA0  Register = 0xfea8
	REGISTER_EFA1  Register = 0xfea9
	REGISTER_EFA2  Register = 0xfeaa
	REGISTER_EFDAT Register = 0xfeab
	REGISTER_EFCMD Register = 0xfeac
	REGISTER_EFCFG Register = 0xfead
)

func (r Register) String() string {
	switch r {
	case REGISTER_EFA0:
		return "EFA0"
	case REGISTER_EFA1:
		return "EFA1"
	case REGISTER_EFA2:
		return "EFA2"
	case REGISTER_EFDAT:
		return "EFDAT"
	case REGISTER_EFCMD:
		return "EFCMD"
	case REGISTER_EFCFG:
		return "EFCFG"
	default:
		return fmt.Sprintf("%#04x", uint16(r))
	}
}

type FlashCommand byte

const (
	FLASH_COMMAND_READ FlashCommand = 0x03
)

const (
	EFCFG_ENABLE byte = 1 << 3
	EFCFG_BUSY   byte = 1 << 1
)

const (
	XDATA_SIZE = 0x10000
	FLASH_SIZE = 128 * 1024

	FLASH_ADDR_MAX = 1<<24 - 1
)

type ReadRequest struct {
	Addr uint16
}

func (r *ReadRequest) String() string {
	return fmt.Sprintf("EDI %s addr: %#04x", COMMAND_READ, r.Addr)
}

func (r *ReadRequest) ToWire() (payload []byte) {
	payload = make([]byte, 4)
	payload[0] = byte(COMMAND_READ)
	putAddr(payload[1:], r.Addr)
	return payload
}

type WriteRequest struct {
	Addr uint16
	Data byte
}

func (r *WriteRequest) String() string {
	return fmt.Sprintf("EDI %s addr: %#04x, data: %#02x", COMMAND_WRITE, r.Addr, r.Data)
}

func (r *WriteRequest) ToWire() (payload []byte) {
	payload = make([]byte, 5)
	payload[0] = byte(COMMAND_WRITE)
	putAddr(payload[1:], r.Addr)
	payload[4] = r.Data
	return payload
}

// ParseRequest decodes an outbound frame, used by the simulator.
func ParseRequest(payload []byte) (cmd Command, addr uint16, data byte, err error) {
	if len(payload) < 4 {
		return 0, 0, 0, fmt.Errorf("EDI frame too short: % x", payload)
	}
	cmd = Command(payload[0])
	// byte 1 is the high address byte, always zero for the 16 bit XDATA space
	addr = uint16(payload[2])<<8 | uint16(payload[3])
	switch cmd {
	case COMMAND_READ:
		if len(payload) != 4 {
			return 0, 0, 0, fmt.Errorf("invalid EDI read frame: % x", payload)
		}
	case COMMAND_WRITE:
		if len(payload) != 5 {
			return 0, 0, 0, fmt.Errorf("invalid EDI write frame: % x", payload)
		}
		data = payload[4]
	default:
		return 0, 0, 0, fmt.Errorf("unknown EDI command %#02x", payload[0])
	}
	return cmd, addr, data, nil
}

func putAddr(dst []byte, addr uint16) {
	dst[0] = 0x00
	dst[1] = byte(addr >> 8)
	dst[2] = byte(addr & 0x00ff)
}

// FindSentinel locates the response marker and returns the byte following it.
// ok is false if the marker is missing or is the last byte of buf.
func FindSentinel(buf []byte) (data byte, ok bool) {
	for i, b := range buf {
		if b == RESPONSE_SENTINEL {
			if i+1 >= len(buf) {
				return 0, false
			}
			return buf[i+1], true
		}
	}
	return 0, false
}
