package sensors

import (
	"context"
	"errors"
	"testing"
	"time"

	"greenhouse/internal/clock"
	"greenhouse/internal/hardware"
	"greenhouse/internal/models"
)

func testControllerConfig() ControllerConfig {
	return ControllerConfig{
		RequestTimeout: time.Second,
		PollInterval:   100 * time.Millisecond,
		RetryInitial:   time.Millisecond,
		RetryMax:       2 * time.Millisecond,
	}
}

func frame(hum, temp float64) []byte {
	return hardware.EncodeSensorFrame(models.SensorValues{
		Humidity:    hum,
		Temperature: temp,
		Actuators:   models.ActuatorState{WindowPosition: 10, PumpBits: 1},
	})
}

func TestControllerReader_ReadsFrame(t *testing.T) {
	c := clock.NewFake(t0)
	link := hardware.NewFakeLink()
	link.Respond(frame(60, 24.5))

	r := NewControllerReader(link, c, testControllerConfig(), nil)
	v, err := r.Read(context.Background())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if v.Humidity != 60 || v.Temperature != 24.5 || v.Actuators.WindowPosition != 10 {
		t.Fatalf("values = %+v", v)
	}
	if link.Requests() != 1 {
		t.Fatalf("requests = %d", link.Requests())
	}
}

func TestControllerReader_RetriesAfterTimeout(t *testing.T) {
	c := clock.NewFake(t0)
	link := hardware.NewFakeLink()
	link.MissRequests(2)
	link.Respond(frame(50, 20))

	r := NewControllerReader(link, c, testControllerConfig(), nil)
	v, err := r.Read(context.Background())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if v.Temperature != 20 {
		t.Fatalf("values = %+v", v)
	}
	if link.Requests() != 3 {
		t.Fatalf("requests = %d, want 3", link.Requests())
	}
	// Two full request timeouts elapsed on the injected clock.
	if elapsed := c.Now().Sub(t0); elapsed < 2*time.Second {
		t.Fatalf("elapsed = %v", elapsed)
	}
}

func TestControllerReader_StopsOnCancel(t *testing.T) {
	c := clock.NewFake(t0)
	link := hardware.NewFakeLink()
	link.MissRequests(1 << 30)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	r := NewControllerReader(link, c, testControllerConfig(), nil)
	_, err := r.Read(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestControllerReader_ClosedLinkIsPermanent(t *testing.T) {
	link := hardware.NewFakeLink()
	_ = link.Close()

	r := NewControllerReader(link, clock.NewFake(t0), testControllerConfig(), nil)
	_, err := r.Read(context.Background())
	if !errors.Is(err, hardware.ErrClosed) {
		t.Fatalf("err = %v", err)
	}
}

func TestControllerReader_PollErrorRetried(t *testing.T) {
	link := hardware.NewFakeLink()
	link.FailPolls(errors.New("framing error"))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	r := NewControllerReader(link, clock.NewFake(t0), testControllerConfig(), nil)
	if _, err := r.Read(ctx); err == nil {
		t.Fatal("expected error once the context ends")
	}
	if link.Requests() < 2 {
		t.Fatalf("poll errors should be retried, requests = %d", link.Requests())
	}
}

func TestControllerReader_BackoffWaitsOnInjectedClock(t *testing.T) {
	c := clock.NewFake(t0)
	link := hardware.NewFakeLink()
	link.MissRequests(1)
	link.Respond(frame(55, 21))

	cfg := testControllerConfig()
	cfg.RetryInitial = 4 * time.Second
	cfg.RetryMax = 8 * time.Second
	r := NewControllerReader(link, c, cfg, nil)
	if _, err := r.Read(context.Background()); err != nil {
		t.Fatalf("read: %v", err)
	}

	var pauses []time.Duration
	for _, w := range c.Waits() {
		if w != cfg.PollInterval {
			pauses = append(pauses, w)
		}
	}
	// default jitter is +-50% of the initial interval
	if len(pauses) != 1 || pauses[0] < 2*time.Second || pauses[0] > 6*time.Second {
		t.Fatalf("backoff pauses = %v, want one pause of 2s-6s", pauses)
	}
	if elapsed := c.Now().Sub(t0); elapsed != cfg.RequestTimeout+pauses[0] {
		t.Fatalf("elapsed = %v, want request timeout plus pause", elapsed)
	}
}

func TestClockTimer_StopBeforeStart(t *testing.T) {
	tm := newClockTimer(clock.NewFake(t0))
	tm.Stop()
	tm.Start(time.Second)
	if got := <-tm.C(); !got.Equal(t0.Add(time.Second)) {
		t.Fatalf("fired at %v", got)
	}
	tm.Stop()
}
