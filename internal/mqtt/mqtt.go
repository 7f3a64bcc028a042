// Package mqtt connects the controller to an MQTT broker: records are
// published for other consumers, and soil sensor readings arrive from a
// Bluetooth-to-MQTT gateway.
package mqtt

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	paho "github.com/eclipse/paho.mqtt.golang"

	"greenhouse/internal/logger"
)

// Config describes the broker connection.
type Config struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	ConnectTimeout time.Duration
	MaxRetries     uint64
	// Subscriptions, when set, are restored on every (re)connect.
	Subscriptions *Subscriptions
}

// Connect dials the broker, retrying with exponential backoff. The client
// reconnects on its own once connected.
func Connect(ctx context.Context, cfg Config, log *logger.Logger) (paho.Client, error) {
	log = logger.OrNop(log)
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Warnw("mqtt_connection_lost", "err", err)
		}).
		SetOnConnectHandler(onConnect(cfg, log))

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = time.Minute
	var policy backoff.BackOff = bo
	if cfg.MaxRetries > 0 {
		policy = backoff.WithMaxRetries(bo, cfg.MaxRetries)
	}

	var client paho.Client
	err := backoff.RetryNotify(func() error {
		client = paho.NewClient(opts)
		token := client.Connect()
		if !token.WaitTimeout(cfg.ConnectTimeout) {
			return fmt.Errorf("connect to %s: timeout", cfg.Broker)
		}
		if err := token.Error(); err != nil {
			return fmt.Errorf("connect to %s: %w", cfg.Broker, err)
		}
		return nil
	}, backoff.WithContext(policy, ctx), func(err error, next time.Duration) {
		log.Warnw("mqtt_connect_retry", "err", err, "next", next)
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// onConnect runs after the first connect and after every automatic
// reconnect.
func onConnect(cfg Config, log *logger.Logger) paho.OnConnectHandler {
	log = logger.OrNop(log)
	return func(client paho.Client) {
		log.Infow("mqtt_connected", "broker", cfg.Broker)
		if cfg.Subscriptions != nil {
			cfg.Subscriptions.Restore(client)
		}
	}
}
