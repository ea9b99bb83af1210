package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/relayctl/core/events"
	coremetrics "github.com/kilianp07/relayctl/core/metrics"
	"github.com/kilianp07/relayctl/infra/logger"
)

const influxWriteTimeout = 5 * time.Second

// InfluxConfig locates the InfluxDB bucket.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes relay events to InfluxDB using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

var (
	_ coremetrics.MetricsSink     = (*InfluxSink)(nil)
	_ coremetrics.ConnectRecorder = (*InfluxSink)(nil)
)

// NewInfluxSink creates a sink for the given endpoint. A URL ending in
// /api/v2/write is accepted.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: influxWriteTimeout}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails, so an unreachable database never blocks
// relay control.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), influxWriteTimeout)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRelayEvent writes one relay_command point.
func (s *InfluxSink) RecordRelayEvent(ev events.RelayEvent) error {
	p := write.NewPointWithMeasurement("relay_command").
		AddTag("topic", ev.Topic).
		AddTag("kind", string(ev.Kind)).
		AddField("running", ev.Running).
		AddField("ok", ev.Err == nil).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordConnectAttempt writes one mqtt_connect_attempt point.
func (s *InfluxSink) RecordConnectAttempt(ev events.ConnectAttempt) error {
	p := write.NewPointWithMeasurement("mqtt_connect_attempt").
		AddTag("broker", ev.Broker).
		AddField("attempt", ev.Attempt).
		AddField("ok", ev.Err == nil).
		SetTime(ev.Time)
	if ev.Err != nil {
		p.AddField("error", ev.Err.Error())
	}
	return s.write(p)
}

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), influxWriteTimeout)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() { s.client.Close() }
