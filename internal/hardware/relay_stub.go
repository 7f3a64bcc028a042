//go:build !linux

package hardware

import "errors"

// RelayDriver is unavailable off Linux.
type RelayDriver struct{}

func NewRelayDriver(cfg RelayConfig) (*RelayDriver, error) {
	return nil, errors.New("gpio relays are only supported on linux")
}

func (d *RelayDriver) Command(tag byte, pumpID int) error {
	return errors.New("gpio relays are only supported on linux")
}

func (d *RelayDriver) Close() error { return nil }
