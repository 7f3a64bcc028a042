package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"greenhouse/internal/models"
)

func TestPublisher_SendsJSONPerKind(t *testing.T) {
	c := newFakeClient()
	p := NewPublisher(c, "greenhouse", 1)
	ts := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	if err := p.Send(context.Background(), models.WateringEvent{EventID: "abc", PumpID: 1, Timestamp: ts, VolumeML: 150}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(c.published) != 1 {
		t.Fatalf("published %d messages", len(c.published))
	}
	msg := c.published[0]
	if msg.topic != "greenhouse/watering_event" || msg.qos != 1 {
		t.Fatalf("topic=%q qos=%d", msg.topic, msg.qos)
	}

	var got struct {
		Kind   string               `json:"kind"`
		Record models.WateringEvent `json:"record"`
	}
	if err := json.Unmarshal(msg.payload, &got); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if got.Kind != "watering_event" || got.Record.EventID != "abc" || got.Record.VolumeML != 150 || !got.Record.Timestamp.Equal(ts) {
		t.Fatalf("payload = %+v", got)
	}
	if p.Name() != "mqtt" {
		t.Fatal("name")
	}
}

func TestPublisher_Errors(t *testing.T) {
	c := newFakeClient()
	p := NewPublisher(c, "gh", 0)
	rec := models.Reading{Kind: models.KindLight, Timestamp: time.Now(), Value: 3}

	c.publishToken = fakeToken{timeout: true}
	if err := p.Send(context.Background(), rec); err == nil {
		t.Fatal("timeout should fail")
	}
	c.publishToken = fakeToken{err: errors.New("not connected")}
	if err := p.Send(context.Background(), rec); err == nil {
		t.Fatal("token error should fail")
	}
	_ = p.Close()
	if !c.disconnected {
		t.Fatal("close should disconnect")
	}
}
