// Package hardware talks to the greenhouse microcontroller and pump relays.
package hardware

import "errors"

// Request and command tags understood by the controller firmware.
const (
	TagReadSensors byte = 's'
	TagPumpOn      byte = 'a'
	TagPumpOff     byte = 'z'
)

// ErrClosed is returned by links used after Close.
var ErrClosed = errors.New("hardware link closed")

// Link is the byte channel to the microcontroller.
type Link interface {
	Commander
	// Request discards any unread input and sends a one-byte request.
	Request(tag byte) error
	// Poll reports a complete response frame once one has arrived. It never
	// blocks for longer than the link's own poll timeout.
	Poll() (frame []byte, ok bool, err error)
	Close() error
}

// Commander switches pumps. Implementations serialize writes so that only
// one command is on the wire at a time.
type Commander interface {
	Command(tag byte, pumpID int) error
}
