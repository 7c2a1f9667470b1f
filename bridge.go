package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	influxclient "github.com/influxdata/influxdb1-client/v2"

	"github.com/pridkett/airsage2mqtt/gas"
	"github.com/pridkett/airsage2mqtt/sensor"
)

// bridge turns raw readings into published statuses and remembers the latest
// one for the HTTP endpoint.
type bridge struct {
	cal     sensor.Calibration
	device  string
	influx  influxclient.Client
	metrics *bridgeMetrics

	mu     sync.RWMutex
	latest *airSageStatus
}

func newBridge(cal sensor.Calibration, device string, influx influxclient.Client) *bridge {
	return &bridge{
		cal:     cal,
		device:  device,
		influx:  influx,
		metrics: newBridgeMetrics(),
	}
}

// Latest returns the most recent status, or nil before the first reading.
func (b *bridge) Latest() *airSageStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.latest
}

// handle processes one raw reading end to end.
func (b *bridge) handle(raw gas.RawReading) *airSageStatus {
	status := newStatus(b.device, raw, b.cal)
	if len(status.Missing) > 0 {
		logger.Warnf("No reading for %v - reporting AQI 0 for those gases", status.Missing)
	}

	b.mu.Lock()
	previous := b.latest
	b.latest = status
	b.mu.Unlock()

	if previous != nil && previous.Category != status.Category {
		logger.Warnf("Air quality changed from %s to %s: %s", previous.Category, status.Category, status.Health)
	}
	logger.Infof("Reading at %s: %s", status.Time.Format(time.RFC3339), describe(status))

	b.metrics.observe(status)
	b.publish(status)
	return status
}

func (b *bridge) publish(status *airSageStatus) {
	if b.influx != nil {
		if err := publishInflux(b.influx, status, config.Influx.Measurement); err != nil {
			logger.Errorf("%v", err)
			b.metrics.publishErrors.WithLabelValues("influx").Inc()
		}
	}
	if client == nil {
		return
	}
	publishMQTT(status)
	if config.Hass != (tomlConfigHass{}) {
		publishHass(status, status.Device, "")
	}
}

// pollReadings fetches a reading from the sensor url every PollRate seconds
// until ctx is done.
func pollReadings(ctx context.Context, b *bridge, httpClient *http.Client) {
	logger.Infof("HTTP Target: %s", config.Sensor.Url)
	ticker := time.NewTicker(time.Duration(config.Sensor.PollRate) * time.Second)
	defer ticker.Stop()

	for {
		raw, err := fetchReading(ctx, httpClient, config.Sensor.Url)
		if err != nil {
			logger.Warnf("Skipping this poll: %v", err)
			b.metrics.sourceErrors.WithLabelValues("http").Inc()
		} else {
			b.handle(raw)
		}

		logger.Debugf("Sleeping for %d seconds", config.Sensor.PollRate)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func fetchReading(ctx context.Context, httpClient *http.Client, url string) (gas.RawReading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return gas.RawReading{}, err
	}
	r, err := httpClient.Do(req)
	if err != nil {
		return gas.RawReading{}, err
	}
	defer r.Body.Close()

	if r.StatusCode != http.StatusOK {
		return gas.RawReading{}, fmt.Errorf("unexpected status %s from %s", r.Status, url)
	}
	return decodeReading(r.Body, time.Now())
}

// subscribeReadings handles readings the board publishes to the sensor topic
// until ctx is done. Messages are handled one at a time.
func subscribeReadings(ctx context.Context, b *bridge) error {
	readings := make(chan []byte, 16)
	handler := func(_ mqtt.Client, msg mqtt.Message) {
		select {
		case readings <- msg.Payload():
		default:
			logger.Warnf("Dropping reading on %s - still busy with earlier ones", msg.Topic())
		}
	}

	token := client.Subscribe(config.Sensor.Topic, 0, handler)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribing to %s: %w", config.Sensor.Topic, token.Error())
	}
	logger.Infof("Subscribed to %s", config.Sensor.Topic)
	defer client.Unsubscribe(config.Sensor.Topic)

	for {
		select {
		case <-ctx.Done():
			return nil
		case payload := <-readings:
			raw, err := decodeReading(bytes.NewReader(payload), time.Now())
			if err != nil {
				logger.Warnf("Skipping message: %v", err)
				b.metrics.sourceErrors.WithLabelValues("mqtt").Inc()
				continue
			}
			b.handle(raw)
		}
	}
}
