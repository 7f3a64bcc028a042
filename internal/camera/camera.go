// Package camera takes greenhouse photos when there is enough light to see
// the plants.
package camera

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"greenhouse/internal/clock"
	"greenhouse/internal/logger"
)

// DefaultMinLight is the light percentage below which photos are skipped.
const DefaultMinLight = 20.0

const fileLayout = "2006-01-02T1504Z"

// Capturer writes one image to path.
type Capturer interface {
	Capture(ctx context.Context, path string) error
}

// LightSensor reports brightness as a percentage.
type LightSensor interface {
	Light(ctx context.Context) (float64, error)
}

// Manager saves timestamped photos into a directory.
type Manager struct {
	dir      string
	clock    clock.Clock
	camera   Capturer
	light    LightSensor
	minLight float64
	log      *logger.Logger
}

// NewManager creates dir if needed. Images are named by the UTC time of
// capture.
func NewManager(dir string, c clock.Clock, camera Capturer, light LightSensor, minLight float64, log *logger.Logger) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir %s: %w", dir, err)
	}
	return &Manager{
		dir:      dir,
		clock:    c,
		camera:   camera,
		light:    light,
		minLight: minLight,
		log:      logger.OrNop(log),
	}, nil
}

// SavePhoto captures an image when the light level allows it and returns the
// file path, or "" when it was too dark.
func (m *Manager) SavePhoto(ctx context.Context) (string, error) {
	level, err := m.light.Light(ctx)
	if err != nil {
		return "", fmt.Errorf("read light: %w", err)
	}
	if level < m.minLight {
		m.log.Infow("photo_skipped", "light", level, "min_light", m.minLight)
		return "", nil
	}

	name := m.clock.Now().UTC().Format(fileLayout) + ".jpg"
	path := filepath.Join(m.dir, name)
	if err := m.camera.Capture(ctx, path); err != nil {
		return "", fmt.Errorf("capture %s: %w", path, err)
	}
	m.log.Infow("photo_saved", "path", path, "light", level)
	return path, nil
}
