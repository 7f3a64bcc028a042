package sink

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"greenhouse/internal/models"
)

// InfluxConfig locates an InfluxDB 2 bucket.
type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// Influx writes one point per record, using the record kind as measurement.
type Influx struct {
	client influxdb2.Client
	writer pointWriter
}

func NewInflux(cfg InfluxConfig) (*Influx, error) {
	if cfg.URL == "" || cfg.Token == "" || cfg.Org == "" || cfg.Bucket == "" {
		return nil, errors.New("influx config incomplete")
	}
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &Influx{client: client, writer: client.WriteAPIBlocking(cfg.Org, cfg.Bucket)}, nil
}

func (s *Influx) Name() string { return "influxdb" }

func (s *Influx) Send(ctx context.Context, rec models.Record) error {
	p, err := pointFor(rec)
	if err != nil {
		return err
	}
	if err := s.writer.WritePoint(ctx, p); err != nil {
		return fmt.Errorf("influx write %s: %w", rec.RecordKind(), err)
	}
	return nil
}

func (s *Influx) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

func pointFor(rec models.Record) (*write.Point, error) {
	measurement := string(rec.RecordKind())
	switch r := rec.(type) {
	case models.Reading:
		return influxdb2.NewPoint(measurement, nil, map[string]interface{}{"value": r.Value}, r.Timestamp), nil
	case models.WateringEvent:
		tags := map[string]string{"pump_id": strconv.Itoa(r.PumpID)}
		fields := map[string]interface{}{"volume_ml": r.VolumeML, "event_id": r.EventID}
		return influxdb2.NewPoint(measurement, tags, fields, r.Timestamp), nil
	case models.ActuatorState:
		fields := map[string]interface{}{
			"window_position": int64(r.WindowPosition),
			"pump_bits":       int64(r.PumpBits),
		}
		return influxdb2.NewPoint(measurement, nil, fields, r.Timestamp), nil
	default:
		return nil, fmt.Errorf("influx: unsupported record %T", rec)
	}
}
