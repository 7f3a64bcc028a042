//go:build linux

package hardware

import (
	"errors"
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"
)

// RelayDriver switches pumps through GPIO relays instead of the controller.
type RelayDriver struct {
	cfg   RelayConfig
	chip  *gpiocdev.Chip
	mu    sync.Mutex
	lines map[int]*gpiocdev.Line
}

// NewRelayDriver requests every configured line as an output, initially off.
func NewRelayDriver(cfg RelayConfig) (*RelayDriver, error) {
	chipName := cfg.Chip
	if chipName == "" {
		chipName = "gpiochip0"
	}
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	d := &RelayDriver{cfg: cfg, chip: chip, lines: make(map[int]*gpiocdev.Line, len(cfg.Lines))}
	for pumpID, offset := range cfg.Lines {
		line, err := chip.RequestLine(offset, gpiocdev.AsOutput(cfg.level(false)))
		if err != nil {
			_ = d.Close()
			return nil, fmt.Errorf("request relay line %d for pump %d: %w", offset, pumpID, err)
		}
		d.lines[pumpID] = line
	}
	return d, nil
}

func (d *RelayDriver) Command(tag byte, pumpID int) error {
	on, err := relayOn(tag)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	line, ok := d.lines[pumpID]
	if !ok {
		return fmt.Errorf("relay: no line configured for pump %d", pumpID)
	}
	if err := line.SetValue(d.cfg.level(on)); err != nil {
		return fmt.Errorf("relay: set pump %d: %w", pumpID, err)
	}
	return nil
}

// Close switches every relay off and releases the lines.
func (d *RelayDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var errs []error
	for pumpID, line := range d.lines {
		if err := line.SetValue(d.cfg.level(false)); err != nil {
			errs = append(errs, fmt.Errorf("switch off pump %d: %w", pumpID, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line for pump %d: %w", pumpID, err))
		}
	}
	d.lines = map[int]*gpiocdev.Line{}
	if d.chip != nil {
		if err := d.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		d.chip = nil
	}
	return errors.Join(errs...)
}
