package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"greenhouse/internal/models"
)

const publishTimeout = 5 * time.Second

// Payload is the JSON body of every published record.
type Payload struct {
	Kind   models.RecordKind `json:"kind"`
	Record models.Record     `json:"record"`
}

// Publisher sends each record to <prefix>/<kind>.
type Publisher struct {
	client paho.Client
	prefix string
	qos    byte
}

func NewPublisher(client paho.Client, prefix string, qos byte) *Publisher {
	return &Publisher{client: client, prefix: prefix, qos: qos}
}

func (p *Publisher) Name() string { return "mqtt" }

// Topic returns the topic a record kind is published on.
func (p *Publisher) Topic(kind models.RecordKind) string {
	return p.prefix + "/" + string(kind)
}

// FormatPayload encodes rec for publishing.
func FormatPayload(rec models.Record) ([]byte, error) {
	return json.Marshal(Payload{Kind: rec.RecordKind(), Record: rec})
}

func (p *Publisher) Send(ctx context.Context, rec models.Record) error {
	payload, err := FormatPayload(rec)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	token := p.client.Publish(p.Topic(rec.RecordKind()), p.qos, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timeout", rec.RecordKind())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", rec.RecordKind(), err)
	}
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}
