package main

import (
	"context"
	"fmt"
	"math"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"greenhouse/internal/camera"
	"greenhouse/internal/clock"
	"greenhouse/internal/config"
	"greenhouse/internal/hardware"
	"greenhouse/internal/logger"
	"greenhouse/internal/metrics"
	"greenhouse/internal/models"
	"greenhouse/internal/mqtt"
	"greenhouse/internal/poller"
	"greenhouse/internal/processor"
	"greenhouse/internal/pump"
	"greenhouse/internal/repository"
	"greenhouse/internal/sensors"
	"greenhouse/internal/service"
	"greenhouse/internal/sink"
)

// devices holds every external connection the controller opens at startup.
type devices struct {
	link      hardware.Link
	relay     *hardware.RelayDriver
	commander hardware.Commander

	climate *sensors.Climate
	soil    *sensors.Soil
	camera  *camera.Manager

	mqtt      paho.Client
	publisher *mqtt.Publisher
	influx    *sink.Influx
	sinks     []sink.Sink
}

// openHardware opens the controller link (or the simulator), the soil sensor
// source, the optional relay board, camera and record sinks.
func openHardware(ctx context.Context, cfg *config.Config, clk clock.Clock, log *logger.Logger, m *metrics.Metrics) (*devices, error) {
	d := &devices{}

	var sim *hardware.Greenhouse
	switch cfg.Hardware.Mode {
	case config.HardwareSimulated:
		sim = hardware.NewGreenhouse(clk, cfg.Soil.InitialMoisture)
		d.link = sim
		log.Infow("hardware_simulated", "initial_moisture", cfg.Soil.InitialMoisture)
	default:
		link, err := hardware.OpenSerial(hardware.SerialConfig{
			Port:        cfg.Hardware.Serial.Port,
			BaudRate:    cfg.Hardware.Serial.BaudRate,
			PollTimeout: cfg.Hardware.Serial.PollTimeout,
		})
		if err != nil {
			return nil, err
		}
		d.link = link
		log.Infow("hardware_serial", "port", cfg.Hardware.Serial.Port, "baud", cfg.Hardware.Serial.BaudRate)
	}

	d.commander = d.link
	if cfg.Hardware.Relay.Enabled {
		relay, err := hardware.NewRelayDriver(hardware.RelayConfig{
			Chip:      cfg.Hardware.Relay.Chip,
			Lines:     cfg.Hardware.Relay.Lines(),
			ActiveLow: cfg.Hardware.Relay.ActiveLow,
		})
		if err != nil {
			d.Close(log)
			return nil, fmt.Errorf("relay driver: %w", err)
		}
		d.relay = relay
		d.commander = relay
		log.Infow("pumps_on_gpio_relays", "chip", cfg.Hardware.Relay.Chip)
	}

	reader := sensors.NewControllerReader(d.link, clk, sensors.ControllerConfig{
		RequestTimeout: cfg.Hardware.Controller.RequestTimeout,
		PollInterval:   cfg.Hardware.Controller.PollInterval,
	}, log.Named("controller"))
	controllerCache := sensors.NewCache[models.SensorValues]("controller", reader.Read, clk, cfg.Hardware.Controller.Freshness, log, m)
	d.climate = sensors.NewClimate(controllerCache)

	subs := mqtt.NewSubscriptions(log.Named("mqtt"))
	if cfg.MQTT.Enabled || cfg.Soil.Source == config.SoilMQTT {
		client, err := mqtt.Connect(ctx, mqtt.Config{
			Broker:        cfg.MQTT.Broker,
			ClientID:      cfg.MQTT.ClientID,
			Username:      cfg.MQTT.Username,
			Password:      cfg.MQTT.Password,
			Subscriptions: subs,
		}, log.Named("mqtt"))
		if err != nil {
			d.Close(log)
			return nil, err
		}
		d.mqtt = client
	}

	var soilReader sensors.SoilReader
	switch cfg.Soil.Source {
	case config.SoilSimulated:
		if sim == nil {
			sim = hardware.NewGreenhouse(clk, cfg.Soil.InitialMoisture)
		}
		soilReader = sim
	default:
		bridge := mqtt.NewFloraBridge(d.mqtt, cfg.Soil.Topic, clk, cfg.Soil.MaxAge, log.Named("flora"))
		if err := bridge.Subscribe(subs); err != nil {
			d.Close(log)
			return nil, err
		}
		soilReader = bridge
	}
	soilCache := sensors.NewCache[models.SoilValues]("soil", soilReader.ReadSoil, clk, cfg.Soil.Freshness, log, m)
	d.soil = sensors.NewSoil(soilCache, cfg.Soil.LightMax)

	if cfg.Camera.Enabled {
		capturer := camera.CommandCapturer{Program: cfg.Camera.Command, Args: cfg.Camera.Args}
		cam, err := camera.NewManager(cfg.Camera.ImageDir, clk, capturer, d.soil, cfg.Camera.MinLight, log.Named("camera"))
		if err != nil {
			d.Close(log)
			return nil, err
		}
		d.camera = cam
	}

	if err := d.openSinks(cfg, log, m); err != nil {
		d.Close(log)
		return nil, err
	}
	return d, nil
}

func (d *devices) openSinks(cfg *config.Config, log *logger.Logger, m *metrics.Metrics) error {
	bc := sink.BreakerConfig{
		Failures: cfg.Breaker.Failures,
		OpenFor:  cfg.Breaker.OpenFor,
		Interval: cfg.Breaker.Interval,
	}
	if cfg.MQTT.Enabled {
		d.publisher = mqtt.NewPublisher(d.mqtt, cfg.MQTT.TopicPrefix, cfg.MQTT.QoS)
		d.sinks = append(d.sinks, sink.NewBreaker(d.publisher, bc, log.Named("sink"), m))
	}
	if cfg.Influx.Enabled {
		influx, err := sink.NewInflux(sink.InfluxConfig{
			URL:    cfg.Influx.URL,
			Token:  cfg.Influx.Token,
			Org:    cfg.Influx.Org,
			Bucket: cfg.Influx.Bucket,
		})
		if err != nil {
			return err
		}
		d.influx = influx
		d.sinks = append(d.sinks, sink.NewBreaker(influx, bc, log.Named("sink"), m))
	}
	return nil
}

// Close releases everything that was opened. Pumps must already be off.
func (d *devices) Close(log *logger.Logger) {
	if d.influx != nil {
		d.influx.Close()
	}
	switch {
	case d.publisher != nil:
		_ = d.publisher.Close()
	case d.mqtt != nil:
		d.mqtt.Disconnect(1000)
	}
	if d.relay != nil {
		if err := d.relay.Close(); err != nil {
			log.Errorw("failed to release relay lines", "err", err)
		}
	}
	if d.link != nil {
		if err := d.link.Close(); err != nil {
			log.Errorw("failed to close hardware link", "err", err)
		}
	}
}

// buildPumps creates one manager per configured pump. All pumps share one
// lock set and one sleep-window gate evaluated in local time.
func buildPumps(ctx context.Context, cfg *config.Config, cmd hardware.Commander, history pump.History, clk clock.Clock, log *logger.Logger, m *metrics.Metrics) ([]*pump.Manager, error) {
	windows, err := pump.ParseSleepWindows(cfg.SleepWindows)
	if err != nil {
		return nil, err
	}
	gate := pump.NewScheduler(clock.NewLocal(), windows)
	locks := pump.NewLockSet()
	plog := log.Named("pump")

	managers := make([]*pump.Manager, 0, len(cfg.Pumps))
	for _, pc := range cfg.Pumps {
		p, err := pump.New(pump.Config{
			ID:           pc.ID,
			RateMLPerSec: pc.RateMLPerSec(),
			Exclusive:    pc.Exclusive,
		}, cmd, clk, locks, plog, m)
		if err != nil {
			return nil, err
		}
		timer, err := pump.SeedTimer(ctx, history, clk, pc.ID, pc.Interval, plog)
		if err != nil {
			return nil, err
		}
		managers = append(managers, pump.NewManager(p, gate, pc.MoistureThreshold, pc.AmountML, timer, plog))
	}
	return managers, nil
}

// buildPollers creates the soil/watering poller per pump, one poller per
// scalar reading, the actuator poller and, when enabled, the camera.
func buildPollers(cfg *config.Config, d *devices, managers []*pump.Manager, records poller.Recorder, clk clock.Clock, log *logger.Logger, m *metrics.Metrics) []*poller.Poller {
	plog := log.Named("poller")
	f := poller.NewFactory(clk, cfg.Polling.Interval, records, plog, m)

	var pollers []*poller.Poller
	for _, mgr := range managers {
		pollers = append(pollers, f.SoilWatering(d.soil, mgr))
	}
	pollers = append(pollers,
		f.Reading(models.KindTemperature, d.climate.Temperature),
		f.Reading(models.KindHumidity, d.climate.Humidity),
		f.Reading(models.KindLight, d.soil.Light),
		f.Reading(models.KindSoilTemperature, d.soil.Temperature),
		f.Reading(models.KindBattery, d.soil.Battery),
		f.Actuators(d.climate),
	)
	if d.camera != nil {
		photos := poller.NewFactory(clk, cfg.Polling.PhotoInterval, records, plog, m)
		pollers = append(pollers, photos.Camera(d.camera))
	}
	return pollers
}

func processorStores(repos *repository.Repository) processor.Stores {
	readings := make(map[models.RecordKind]processor.ReadingStore, len(repos.Readings))
	for k, r := range repos.Readings {
		readings[k] = r
	}
	return processor.Stores{
		Readings:  readings,
		Waterings: repos.Waterings,
		Actuators: repos.Actuators,
	}
}

func servicePumps(managers []*pump.Manager) []service.Pump {
	out := make([]service.Pump, 0, len(managers))
	for _, m := range managers {
		out = append(out, m)
	}
	return out
}

func exclusivePumps(cfg *config.Config) map[int]bool {
	out := make(map[int]bool, len(cfg.Pumps))
	for _, pc := range cfg.Pumps {
		out[pc.ID] = pc.Exclusive
	}
	return out
}

// longestPumpRun is how long the slowest configured pump runs for the
// largest amount a manual request may ask for.
func longestPumpRun(cfg *config.Config) time.Duration {
	var longest time.Duration
	for _, pc := range cfg.Pumps {
		rate := pc.RateMLPerSec()
		if rate <= 0 {
			continue
		}
		amount := math.Max(pc.AmountML, cfg.ManualMaxML)
		if d := time.Duration(amount / rate * float64(time.Second)); d > longest {
			longest = d
		}
	}
	return longest
}
