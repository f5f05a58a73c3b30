package edi

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

type FlashState byte

const (
	FLASH_STATE_IDLE FlashState = iota
	FLASH_STATE_ENABLED
	FLASH_STATE_ADDRESS_LOADED
	FLASH_STATE_COMMAND_ISSUED
	FLASH_STATE_POLLING
	FLASH_STATE_DATA_READY
)

func (s FlashState) String() string {
	switch s {
	case FLASH_STATE_IDLE:
		return "Idle"
	case FLASH_STATE_ENABLED:
		return "FlashEnabled"
	case FLASH_STATE_ADDRESS_LOADED:
		return "AddressLoaded"
	case FLASH_STATE_COMMAND_ISSUED:
		return "CommandIssued"
	case FLASH_STATE_POLLING:
		return "Polling"
	case FLASH_STATE_DATA_READY:
		return "DataReady"
	default:
		return fmt.Sprintf("FlashState(%d)", byte(s))
	}
}

func (e *EDI) FlashState() FlashState {
	return e.flashState
}

func (e *EDI) FlashEnabled() bool {
	return e.flashEnabled
}

func (e *EDI) setFlashState(s FlashState) {
	e.log.Tracef("flash state %s -> %s", e.flashState, s)
	e.flashState = s
}

// EnableFlash sets EFCFG.ENABLE once per session.
func (e *EDI) EnableFlash() error {
	if e.flashEnabled {
		return nil
	}
	if err := e.Write(uint16(REGISTER_EFCFG), EFCFG_ENABLE); err != nil {
		return errors.Wrap(err, "enable flash")
	}
	e.flashEnabled = true
	e.setFlashState(FLASH_STATE_ENABLED)
	return nil
}

// ReadFlash fetches one byte of the EC's internal flash. There is no burst
// mode, every byte runs through address load, command and busy poll.
//
// With the default poll policy this blocks until the controller clears
// EFCFG.BUSY.
func (e *EDI) ReadFlash(addr uint32) (byte, error) {
	if addr > FLASH_ADDR_MAX {
		return 0, errors.Wrapf(ErrAddressRange, "flash address %#x", addr)
	}

	if err := e.EnableFlash(); err != nil {
		return 0, err
	}

	// EFA2 (bits 23:16) first
	for _, w := range []struct {
		reg  Register
		data byte
	}{
		{REGISTER_EFA2, byte(addr >> 16)},
		{REGISTER_EFA1, byte(addr >> 8)},
		{REGISTER_EFA0, byte(addr)},
	} {
		if err := e.Write(uint16(w.reg), w.data); err != nil {
			e.setFlashState(FLASH_STATE_ENABLED)
			return 0, errors.Wrapf(err, "load flash address %s", w.reg)
		}
	}
	e.setFlashState(FLASH_STATE_ADDRESS_LOADED)

	if err := e.Write(uint16(REGISTER_EFCMD), byte(FLASH_COMMAND_READ)); err != nil {
		e.setFlashState(FLASH_STATE_ENABLED)
		return 0, errors.Wrap(err, "issue flash read")
	}
	e.setFlashState(FLASH_STATE_COMMAND_ISSUED)

	if err := e.waitFlashReady(addr); err != nil {
		e.setFlashState(FLASH_STATE_ENABLED)
		return 0, err
	}
	e.setFlashState(FLASH_STATE_DATA_READY)

	data, err := e.Read(uint16(REGISTER_EFDAT))
	e.setFlashState(FLASH_STATE_ENABLED)
	if err != nil {
		return 0, errors.Wrapf(err, "read flash data at %#06x", addr)
	}
	return data, nil
}

func (e *EDI) waitFlashReady(addr uint32) error {
	e.setFlashState(FLASH_STATE_POLLING)
	policy := e.config.Poll

	for attempt := 1; ; attempt++ {
		cfg, err := e.Read(uint16(REGISTER_EFCFG))
		if err != nil {
			return errors.Wrap(err, "poll flash status")
		}
		if cfg&EFCFG_BUSY == 0 {
			return nil
		}
		if policy.MaxAttempts > 0 && attempt >= policy.MaxAttempts {
			return &FlashBusyError{Addr: addr, Attempts: attempt}
		}
		time.Sleep(policy.Interval)
	}
}
