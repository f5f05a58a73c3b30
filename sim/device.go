// Package sim simulates the EDI side of an ENE embedded controller, including
// the embedded flash controller behind EFCFG/EFCMD/EFA*/EFDAT.
package sim

import (
	"errors"

	"github.com/mame82/editool/edi"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/physic"
)

const FILLER byte = 0xff

var ErrClosed = errors.New("simulated device closed")

type Exchange struct {
	Freq    physic.Frequency
	Out     []byte
	ReadLen int
}

// Device implements edi.Transport.
type Device struct {
	XDATA [edi.XDATA_SIZE]byte
	Flash []byte

	// Latency is the number of filler bytes clocked out before the response
	// marker. ResponseLatency overrides it per read if set.
	Latency         int
	ResponseLatency func(addr uint16) int

	// BusyPolls is how many EFCFG reads report BUSY after a flash command.
	BusyPolls int

	Freq      physic.Frequency
	Exchanges []Exchange
	Enabled   bool
	Closed    bool

	busyLeft int
}

var _ edi.Transport = (*Device)(nil)

func NewDevice(flash []byte) *Device {
	return &Device{Flash: flash}
}

func (d *Device) SetFrequency(f physic.Frequency) error {
	if d.Closed {
		return ErrClosed
	}
	d.Freq = f
	return nil
}

func (d *Device) Exchange(out []byte, readLen int) ([]byte, error) {
	if d.Closed {
		return nil, ErrClosed
	}
	d.Exchanges = append(d.Exchanges, Exchange{
		Freq:    d.Freq,
		Out:     append([]byte(nil), out...),
		ReadLen: readLen,
	})

	in := make([]byte, readLen)
	for i := range in {
		in[i] = FILLER
	}

	// EDI wakes up on a clock between 1 and 8 MHz
	if !d.Enabled {
		if d.Freq >= physic.MegaHertz && d.Freq <= 8*physic.MegaHertz {
			d.Enabled = true
		}
		return in, nil
	}
	if len(out) == 0 {
		return in, nil
	}

	cmd, addr, data, err := edi.ParseRequest(out)
	if err != nil {
		log.WithError(err).Warn("sim: dropping frame")
		return in, nil
	}

	switch cmd {
	case edi.COMMAND_WRITE:
		d.write(addr, data)
	case edi.COMMAND_READ:
		lat := d.Latency
		if d.ResponseLatency != nil {
			lat = d.ResponseLatency(addr)
		}
		if lat >= 0 && lat < len(in) {
			in[lat] = edi.RESPONSE_SENTINEL
			if lat+1 < len(in) {
				in[lat+1] = d.read(addr)
			}
		}
	}
	return in, nil
}

func (d *Device) Close() error {
	d.Closed = true
	return nil
}

func (d *Device) read(addr uint16) byte {
	if addr == uint16(edi.REGISTER_EFCFG) && d.busyLeft > 0 {
		d.busyLeft--
		if d.busyLeft == 0 {
			d.completeFlashRead()
		}
		return d.XDATA[addr] | edi.EFCFG_BUSY
	}
	return d.XDATA[addr]
}

func (d *Device) write(addr uint16, data byte) {
	switch edi.Register(addr) {
	case edi.REGISTER_EFCFG:
		d.XDATA[addr] = data &^ edi.EFCFG_BUSY
		return
	case edi.REGISTER_EFCMD:
		d.XDATA[addr] = data
		if edi.FlashCommand(data) == edi.FLASH_COMMAND_READ && d.XDATA[edi.REGISTER_EFCFG]&edi.EFCFG_ENABLE != 0 {
			d.busyLeft = d.BusyPolls
			if d.busyLeft == 0 {
				d.completeFlashRead()
			}
		}
		return
	}
	d.XDATA[addr] = data
}

func (d *Device) FlashAddr() uint32 {
	return uint32(d.XDATA[edi.REGISTER_EFA2])<<16 |
		uint32(d.XDATA[edi.REGISTER_EFA1])<<8 |
		uint32(d.XDATA[edi.REGISTER_EFA0])
}

func (d *Device) completeFlashRead() {
	addr := d.FlashAddr()
	data := FILLER
	if int(addr) < len(d.Flash) {
		data = d.Flash[addr]
	}
	d.XDATA[edi.REGISTER_EFDAT] = data
}

// Writes returns the decoded register writes seen so far.
func (d *Device) Writes() (res []RegisterAccess) {
	return d.accesses(edi.COMMAND_WRITE)
}

// Reads returns the register read requests, one per exchange, so a read that
// needed a wider window shows up more than once.
func (d *Device) Reads() (res []RegisterAccess) {
	return d.accesses(edi.COMMAND_READ)
}

type RegisterAccess struct {
	Addr uint16
	Data byte
}

func (d *Device) accesses(cmd edi.Command) (res []RegisterAccess) {
	for _, ex := range d.Exchanges {
		c, addr, data, err := edi.ParseRequest(ex.Out)
		if err != nil || c != cmd {
			continue
		}
		res = append(res, RegisterAccess{Addr: addr, Data: data})
	}
	return res
}

func (d *Device) ResetLog() {
	d.Exchanges = nil
}
