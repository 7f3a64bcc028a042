// Package sink forwards stored records to external systems.
package sink

import (
	"context"

	"greenhouse/internal/models"
)

// Sink receives every record after it has been stored.
type Sink interface {
	Name() string
	Send(ctx context.Context, rec models.Record) error
}
