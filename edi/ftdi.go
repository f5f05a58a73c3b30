package edi

import (
	"strconv"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/ftdi"
)

var ErrNoBridge = errors.New("no FTDI MPSSE bridge found")

// FTDITransport drives EDI through the MPSSE engine of an FTDI bridge.
// SCK/MOSI/MISO are ADBUS0..2, chip select is ADBUS3.
type FTDITransport struct {
	Dev  ftdi.Dev
	open func() (spi.PortCloser, error)
	port spi.PortCloser
	conn spi.Conn
	freq physic.Frequency
}

var _ Transport = (*FTDITransport)(nil)

// OpenFTDI opens the bridge selected by sel, which is either an EEPROM serial
// number or an index into the FT232H class devices. An empty sel picks the
// first one.
func OpenFTDI(sel string) (*FTDITransport, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "periph host init")
	}

	dev, err := findBridge(ftdi.All(), sel, eepromSerial)
	if err != nil {
		return nil, err
	}
	log.WithField("bridge", dev.String()).Info("Using FTDI bridge")

	return newFTDITransport(dev, dev.SPI)
}

func newFTDITransport(dev ftdi.Dev, open func() (spi.PortCloser, error)) (*FTDITransport, error) {
	f := &FTDITransport{Dev: dev, open: open}
	if err := f.reopen(); err != nil {
		return nil, err
	}
	return f, nil
}

func eepromSerial(d ftdi.Dev) string {
	ee := ftdi.EEPROM{}
	if err := d.EEPROM(&ee); err != nil {
		return ""
	}
	return ee.Serial
}

// findBridge only considers MPSSE parts, FT232R and friends expose a bitbang
// SPI port that cannot serve EDI.
func findBridge(devs []ftdi.Dev, sel string, serial func(ftdi.Dev) string) (*ftdi.FT232H, error) {
	idx, errIdx := strconv.Atoi(sel)
	n := 0
	for _, d := range devs {
		dev, ok := d.(*ftdi.FT232H)
		if !ok {
			continue
		}
		switch {
		case sel == "":
			return dev, nil
		case errIdx == nil:
			if n == idx {
				return dev, nil
			}
		default:
			if serial(dev) == sel {
				return dev, nil
			}
		}
		n++
	}
	if sel != "" {
		return nil, errors.Wrapf(ErrNoBridge, "selector %q", sel)
	}
	return nil, ErrNoBridge
}

func (f *FTDITransport) reopen() error {
	if f.port != nil {
		if err := f.port.Close(); err != nil {
			return errors.Wrap(err, "close SPI port")
		}
		f.port, f.conn = nil, nil
	}
	port, err := f.open()
	if err != nil {
		return errors.Wrapf(err, "open SPI port on %s", f.Dev)
	}
	f.port = port
	return nil
}

// SetFrequency reconnects the port at freq. The MPSSE port only ever lowers
// its clock through LimitSpeed and Connect, going faster needs a fresh port.
func (f *FTDITransport) SetFrequency(freq physic.Frequency) error {
	if f.port == nil || (f.freq != 0 && freq > f.freq) {
		if err := f.reopen(); err != nil {
			return err
		}
	}
	if err := f.port.LimitSpeed(freq); err != nil {
		return errors.Wrapf(err, "limit SPI speed to %s", freq)
	}
	conn, err := f.port.Connect(freq, spi.Mode0, 8)
	if err != nil {
		return errors.Wrapf(err, "connect SPI at %s", freq)
	}
	f.conn = conn
	f.freq = freq
	return nil
}

func (f *FTDITransport) Frequency() physic.Frequency {
	return f.freq
}

// Exchange emulates a half duplex transfer on the full duplex MPSSE link,
// bytes clocked in while out is shifted are dropped.
func (f *FTDITransport) Exchange(out []byte, readLen int) ([]byte, error) {
	if f.conn == nil {
		return nil, errors.New("SPI port not connected")
	}
	if readLen == 0 {
		if err := f.conn.Tx(out, nil); err != nil {
			return nil, errors.Wrap(err, "SPI write")
		}
		return nil, nil
	}

	w := make([]byte, len(out)+readLen)
	copy(w, out)
	r := make([]byte, len(w))
	if err := f.conn.Tx(w, r); err != nil {
		return nil, errors.Wrap(err, "SPI exchange")
	}
	return r[len(out):], nil
}

func (f *FTDITransport) Close() error {
	if f.port == nil {
		return nil
	}
	err := f.port.Close()
	f.port = nil
	f.conn = nil
	return err
}
