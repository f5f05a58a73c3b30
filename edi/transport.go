package edi

import (
	"periph.io/x/conn/v3/physic"
)

const (
	HANDSHAKE_FREQUENCY = 4 * physic.MegaHertz
	OPERATION_FREQUENCY = 16 * physic.MegaHertz
)

// Transport is a clocked serial link to the EC. Exchange writes out and then
// clocks in readLen bytes while chip select stays asserted.
type Transport interface {
	SetFrequency(f physic.Frequency) error
	Exchange(out []byte, readLen int) (in []byte, err error)
	Close() error
}
