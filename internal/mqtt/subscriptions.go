package mqtt

import (
	"fmt"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"

	"greenhouse/internal/logger"
)

type subscription struct {
	topic   string
	qos     byte
	handler paho.MessageHandler
}

// Subscriptions remembers every topic the controller listens on and
// subscribes again after each reconnect. Sessions are clean, so the broker
// forgets them whenever the connection drops.
type Subscriptions struct {
	mu   sync.Mutex
	subs []subscription
	log  *logger.Logger
}

func NewSubscriptions(log *logger.Logger) *Subscriptions {
	return &Subscriptions{log: logger.OrNop(log)}
}

// Add subscribes now and keeps the subscription for later reconnects.
func (s *Subscriptions) Add(client paho.Client, topic string, qos byte, handler paho.MessageHandler) error {
	if err := subscribe(client, topic, qos, handler); err != nil {
		return err
	}
	s.mu.Lock()
	s.subs = append(s.subs, subscription{topic: topic, qos: qos, handler: handler})
	s.mu.Unlock()
	return nil
}

// Restore subscribes to every remembered topic. A failure is logged and the
// remaining topics are still tried.
func (s *Subscriptions) Restore(client paho.Client) {
	s.mu.Lock()
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		if err := subscribe(client, sub.topic, sub.qos, sub.handler); err != nil {
			s.log.Errorw("mqtt_resubscribe_failed", "topic", sub.topic, "err", err)
			continue
		}
		s.log.Infow("mqtt_resubscribed", "topic", sub.topic)
	}
}

func subscribe(client paho.Client, topic string, qos byte, handler paho.MessageHandler) error {
	token := client.Subscribe(topic, qos, handler)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("subscribe %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	return nil
}
