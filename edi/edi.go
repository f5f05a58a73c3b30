package edi

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// EDI is a session on the ENE Debug Interface of an embedded controller. It
// owns its transport and is not safe for concurrent use.
type EDI struct {
	t      Transport
	config Config
	log    log.Ext1FieldLogger

	flashEnabled bool
	flashState   FlashState
}

// New takes ownership of t and enables the debug interface. EDI only comes up
// after it saw a clock between 1 and 8 MHz, so a 32 byte read is clocked at
// 4 MHz before switching to operation speed.
func New(t Transport, opts ...Option) (*EDI, error) {
	if t == nil {
		return nil, errors.New("nil transport")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	e := &EDI{
		t:      t,
		config: cfg,
		log:    cfg.Logger,
	}

	if err := e.handshake(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *EDI) handshake() error {
	if err := e.t.SetFrequency(HANDSHAKE_FREQUENCY); err != nil {
		return errors.Wrap(err, "set handshake frequency")
	}
	if _, err := e.t.Exchange(nil, HANDSHAKE_READ_LEN); err != nil {
		return errors.Wrap(err, "handshake read")
	}
	if err := e.t.SetFrequency(OPERATION_FREQUENCY); err != nil {
		return errors.Wrap(err, "set operation frequency")
	}
	e.log.WithField("frequency", OPERATION_FREQUENCY).Debug("EDI enabled")
	return nil
}

func (e *EDI) Close() error {
	if e.t == nil {
		return nil
	}
	err := e.t.Close()
	e.t = nil
	return err
}

// Read returns the XDATA register at addr. The position of the response
// within the inbound stream depends on earlier bus state, so the window
// grows until the marker and its data byte fit.
func (e *EDI) Read(addr uint16) (byte, error) {
	if e.t == nil {
		return 0, ErrClosed
	}
	req := &ReadRequest{Addr: addr}
	out := req.ToWire()

	for rlen := READ_WINDOW_START; ; rlen += READ_WINDOW_STEP {
		if e.config.ShowInOut {
			e.log.Debugf("Out: % #x (window %d)", out, rlen)
		}
		in, err := e.t.Exchange(out, rlen)
		if err != nil {
			return 0, errors.Wrapf(err, "read %#04x", addr)
		}
		if e.config.ShowInOut {
			e.log.Debugf("In: % #x", in)
		}

		if data, ok := FindSentinel(in); ok {
			return data, nil
		}
		if rlen >= READ_WINDOW_MAX {
			return 0, &TimeoutError{Addr: addr, Window: rlen}
		}
	}
}

// Write stores data at addr. EDI has no write acknowledge, only transport
// errors are reported.
func (e *EDI) Write(addr uint16, data byte) error {
	if e.t == nil {
		return ErrClosed
	}
	req := &WriteRequest{Addr: addr, Data: data}
	out := req.ToWire()
	if e.config.ShowInOut {
		e.log.Debugf("Out: % #x", out)
	}
	if _, err := e.t.Exchange(out, 0); err != nil {
		return errors.Wrapf(err, "write %#04x", addr)
	}
	return nil
}
