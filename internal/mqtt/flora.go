package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"greenhouse/internal/clock"
	"greenhouse/internal/logger"
	"greenhouse/internal/models"
)

// ErrNoSoilData means the gateway has not reported recently enough.
var ErrNoSoilData = errors.New("no recent soil sensor data")

// FloraBridge keeps the latest soil sensor report published by a
// Bluetooth-to-MQTT gateway.
type FloraBridge struct {
	client paho.Client
	topic  string
	clock  clock.Clock
	maxAge time.Duration
	log    *logger.Logger

	mu     sync.Mutex
	latest models.SoilValues
	at     time.Time
	have   bool
}

// NewFloraBridge reads reports from topic. A report older than maxAge is
// treated as missing.
func NewFloraBridge(client paho.Client, topic string, c clock.Clock, maxAge time.Duration, log *logger.Logger) *FloraBridge {
	return &FloraBridge{client: client, topic: topic, clock: c, maxAge: maxAge, log: logger.OrNop(log)}
}

// Subscribe starts receiving reports and registers the topic with subs so
// that it survives broker reconnects.
func (b *FloraBridge) Subscribe(subs *Subscriptions) error {
	if err := subs.Add(b.client, b.topic, 1, b.handle); err != nil {
		return err
	}
	b.log.Infow("flora_subscribed", "topic", b.topic)
	return nil
}

func (b *FloraBridge) handle(_ paho.Client, msg paho.Message) {
	var v models.SoilValues
	if err := json.Unmarshal(msg.Payload(), &v); err != nil {
		b.log.Warnw("flora_bad_payload", "topic", msg.Topic(), "err", err)
		return
	}
	b.mu.Lock()
	b.latest = v
	b.at = b.clock.Now()
	b.have = true
	b.mu.Unlock()
}

// ReadSoil returns the most recent report.
func (b *FloraBridge) ReadSoil(ctx context.Context) (models.SoilValues, error) {
	if err := ctx.Err(); err != nil {
		return models.SoilValues{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.have {
		return models.SoilValues{}, ErrNoSoilData
	}
	if age := b.clock.Now().Sub(b.at); b.maxAge > 0 && age > b.maxAge {
		return models.SoilValues{}, fmt.Errorf("%w: last report %s ago", ErrNoSoilData, age)
	}
	return b.latest, nil
}
