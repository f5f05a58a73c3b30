package edi

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrTimeout      = errors.New("read timeout")
	ErrFlashBusy    = errors.New("flash controller stayed busy")
	ErrAddressRange = errors.New("address out of range")
	ErrClosed       = errors.New("EDI session closed")
)

// TimeoutError is returned by Read if no response marker followed by a data
// byte showed up in any window up to READ_WINDOW_MAX.
type TimeoutError struct {
	Addr   uint16
	Window int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("read timeout at %#04x (no response in %d byte window)", e.Addr, e.Window)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// FlashBusyError is only produced when the poll policy has a cap.
type FlashBusyError struct {
	Addr     uint32
	Attempts int
}

func (e *FlashBusyError) Error() string {
	return fmt.Sprintf("flash read at %#06x: busy after %d polls", e.Addr, e.Attempts)
}

func (e *FlashBusyError) Is(target error) bool {
	return target == ErrFlashBusy
}
