package hardware

import (
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
)

// SerialConfig describes the controller's serial port.
type SerialConfig struct {
	Port        string
	BaudRate    int
	PollTimeout time.Duration
}

// SerialLink is a Link over a serial port.
type SerialLink struct {
	port serial.Port

	writeMu sync.Mutex

	readMu  sync.Mutex
	pending []byte
	scratch [64]byte
	closed  bool
}

// OpenSerial opens the port and configures the read timeout used by Poll.
func OpenSerial(cfg SerialConfig) (*SerialLink, error) {
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %q: %w", cfg.Port, err)
	}
	timeout := cfg.PollTimeout
	if timeout <= 0 {
		timeout = 50 * time.Millisecond
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}
	return &SerialLink{port: port}, nil
}

func (l *SerialLink) Request(tag byte) error {
	l.readMu.Lock()
	l.pending = l.pending[:0]
	closed := l.closed
	l.readMu.Unlock()
	if closed {
		return ErrClosed
	}
	if err := l.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("reset input buffer: %w", err)
	}
	return l.write([]byte{tag})
}

func (l *SerialLink) Command(tag byte, pumpID int) error {
	b, err := EncodeCommand(tag, pumpID)
	if err != nil {
		return err
	}
	return l.write(b)
}

func (l *SerialLink) write(b []byte) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	for len(b) > 0 {
		n, err := l.port.Write(b)
		if err != nil {
			return fmt.Errorf("serial write: %w", err)
		}
		b = b[n:]
	}
	return nil
}

func (l *SerialLink) Poll() ([]byte, bool, error) {
	l.readMu.Lock()
	defer l.readMu.Unlock()
	if l.closed {
		return nil, false, ErrClosed
	}

	n, err := l.port.Read(l.scratch[:])
	if err != nil {
		return nil, false, fmt.Errorf("serial read: %w", err)
	}
	l.pending = append(l.pending, l.scratch[:n]...)
	if len(l.pending) < FrameSize {
		return nil, false, nil
	}
	frame := make([]byte, FrameSize)
	copy(frame, l.pending[:FrameSize])
	l.pending = append(l.pending[:0], l.pending[FrameSize:]...)
	return frame, true, nil
}

func (l *SerialLink) Close() error {
	l.readMu.Lock()
	l.closed = true
	l.readMu.Unlock()
	return l.port.Close()
}
