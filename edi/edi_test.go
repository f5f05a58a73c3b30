package edi

import (
	"fmt"
	"io/ioutil"
	"testing"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"
)

// scriptTransport records every call and answers reads through respond.
type scriptTransport struct {
	events  []string
	readLen []int
	respond func(out []byte, readLen int) []byte
	failOn  int // fail the n-th exchange, 1 based
	n       int
	closed  bool
}

var errBoom = errors.New("boom")

func (s *scriptTransport) SetFrequency(f physic.Frequency) error {
	s.events = append(s.events, "freq "+f.String())
	return nil
}

func (s *scriptTransport) Exchange(out []byte, readLen int) ([]byte, error) {
	s.n++
	s.events = append(s.events, fmt.Sprintf("xchg %d/%d", len(out), readLen))
	if s.failOn == s.n {
		return nil, errBoom
	}
	if len(out) > 0 && Command(out[0]) == COMMAND_READ {
		s.readLen = append(s.readLen, readLen)
	}
	if s.respond != nil && readLen > 0 {
		return s.respond(out, readLen), nil
	}
	return make([]byte, readLen), nil
}

func (s *scriptTransport) Close() error {
	s.closed = true
	return nil
}

func filled(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = 0xff
	}
	return b
}

func TestHandshake(t *testing.T) {
	logger := log.New()
	logger.SetOutput(ioutil.Discard)
	logger.SetLevel(log.TraceLevel)

	tr := &scriptTransport{}
	e, err := New(tr, WithLogger(logger), WithShowInOut(true))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"freq " + (4 * physic.MegaHertz).String(),
		"xchg 0/32",
		"freq " + (16 * physic.MegaHertz).String(),
	}, tr.events)
	assert.False(t, e.FlashEnabled())
	assert.Equal(t, FLASH_STATE_IDLE, e.FlashState())
}

func TestHandshakeError(t *testing.T) {
	tr := &scriptTransport{failOn: 1}
	_, err := New(tr)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errBoom))

	_, err = New(nil)
	assert.Error(t, err)
}

func TestReadWindowGrowth(t *testing.T) {
	tr := &scriptTransport{respond: func(out []byte, n int) []byte { return filled(n) }}
	e, err := New(tr)
	require.NoError(t, err)

	_, err = e.Read(0x1234)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))

	var te *TimeoutError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, uint16(0x1234), te.Addr)
	assert.Equal(t, READ_WINDOW_MAX, te.Window)

	assert.Equal(t, []int{4, 6, 8, 10, 12, 14, 16, 18, 20, 22, 24, 26, 28, 30}, tr.readLen)
}

func TestReadSentinelOnLastByteRetries(t *testing.T) {
	tr := &scriptTransport{respond: func(out []byte, n int) []byte {
		b := filled(n)
		// marker lands at byte 7, data needs a window of at least 9
		if n > 7 {
			b[7] = RESPONSE_SENTINEL
		}
		if n > 8 {
			b[8] = 0x42
		}
		return b
	}}
	e, err := New(tr)
	require.NoError(t, err)

	data, err := e.Read(0x0010)
	require.NoError(t, err)
	assert.Equal(t, byte(0x42), data)
	assert.Equal(t, []int{4, 6, 8, 10}, tr.readLen)
}

func TestReadSucceedsInLastWindow(t *testing.T) {
	tr := &scriptTransport{respond: func(out []byte, n int) []byte {
		b := filled(n)
		if n == READ_WINDOW_MAX {
			b[n-2] = RESPONSE_SENTINEL
			b[n-1] = 0x99
		}
		return b
	}}
	e, err := New(tr)
	require.NoError(t, err)

	data, err := e.Read(0x0010)
	require.NoError(t, err)
	assert.Equal(t, byte(0x99), data)
	assert.Len(t, tr.readLen, 14)
}

func TestReadFrame(t *testing.T) {
	var frames [][]byte
	tr := &scriptTransport{respond: func(out []byte, n int) []byte {
		if len(out) > 0 {
			frames = append(frames, append([]byte(nil), out...))
		}
		b := filled(n)
		b[0], b[1] = RESPONSE_SENTINEL, 0x01
		return b
	}}
	e, err := New(tr)
	require.NoError(t, err)

	_, err = e.Read(0xfeab)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, []byte{0x30, 0x00, 0xfe, 0xab}, frames[0])
}

func TestWrite(t *testing.T) {
	var frame []byte
	var rlen = -1
	tr := &scriptTransport{}
	e, err := New(tr)
	require.NoError(t, err)

	wrapped := &frameSpy{Transport: tr, out: &frame, readLen: &rlen}
	e.t = wrapped

	require.NoError(t, e.Write(0xfead, 0x08))
	assert.Equal(t, []byte{0x40, 0x00, 0xfe, 0xad, 0x08}, frame)
	assert.Equal(t, 0, rlen)
}

func TestTransportErrorPropagates(t *testing.T) {
	tr := &scriptTransport{failOn: 2}
	e, err := New(tr)
	require.NoError(t, err)

	_, err = e.Read(0x0000)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errBoom))
	assert.False(t, errors.Is(err, ErrTimeout))

	tr.failOn = 3
	err = e.Write(0x0000, 0x00)
	assert.True(t, errors.Is(err, errBoom))
}

func TestClose(t *testing.T) {
	tr := &scriptTransport{}
	e, err := New(tr)
	require.NoError(t, err)

	require.NoError(t, e.Close())
	assert.True(t, tr.closed)
	assert.NoError(t, e.Close())

	_, err = e.Read(0x0000)
	assert.True(t, errors.Is(err, ErrClosed))
	assert.True(t, errors.Is(e.Write(0x0000, 0), ErrClosed))
}

type frameSpy struct {
	Transport
	out     *[]byte
	readLen *int
}

func (f *frameSpy) Exchange(out []byte, readLen int) ([]byte, error) {
	*f.out = append([]byte(nil), out...)
	*f.readLen = readLen
	return f.Transport.Exchange(out, readLen)
}
