package hardware

import "fmt"

// RelayConfig maps pump ids to GPIO line offsets on one chip.
type RelayConfig struct {
	Chip string
	// Lines[pumpID] is the line offset driving that pump's relay.
	Lines map[int]int
	// ActiveLow inverts the output for relay boards that switch on low.
	ActiveLow bool
}

func (c RelayConfig) level(on bool) int {
	if on != c.ActiveLow {
		return 1
	}
	return 0
}

func relayOn(tag byte) (bool, error) {
	switch tag {
	case TagPumpOn:
		return true, nil
	case TagPumpOff:
		return false, nil
	default:
		return false, fmt.Errorf("relay: unsupported command %q", tag)
	}
}
