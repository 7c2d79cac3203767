package nacos

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/KOMKZ/go-yogan-nacos/nacos"

// Metrics instruments for config clients
type Metrics struct {
	fetchTotal    metric.Int64Counter     // GetConfig calls
	fetchDuration metric.Float64Histogram // GetConfig duration
	changesTotal  metric.Int64Counter     // listener deliveries
}

// NewMetrics registers the instruments on meter (nil: global meter provider)
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = otel.Meter(meterName)
	}

	m := &Metrics{}
	var err error
	m.fetchTotal, err = meter.Int64Counter(
		"nacos_config_fetch_total",
		metric.WithDescription("Total number of config document fetches"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, err
	}

	m.fetchDuration, err = meter.Float64Histogram(
		"nacos_config_fetch_duration_seconds",
		metric.WithDescription("Config document fetch duration distribution"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.changesTotal, err = meter.Int64Counter(
		"nacos_config_changes_total",
		metric.WithDescription("Total number of change notifications received"),
		metric.WithUnit("{change}"),
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Instrument wraps every client created by f
func (m *Metrics) Instrument(f ClientFactory) ClientFactory {
	return ClientFactoryFunc(func(props Properties) (Client, error) {
		client, err := f.CreateClient(props)
		if err != nil {
			return nil, err
		}
		return &instrumentedClient{Client: client, metrics: m}, nil
	})
}

func (m *Metrics) recordFetch(ctx context.Context, dataID, group string, start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("data_id", dataID),
		attribute.String("group", group),
		attribute.String("result", result),
	)
	m.fetchTotal.Add(ctx, 1, attrs)
	m.fetchDuration.Record(ctx, time.Since(start).Seconds(), attrs)
}

func (m *Metrics) recordChange(dataID, group string) {
	m.changesTotal.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("data_id", dataID),
		attribute.String("group", group),
	))
}

type instrumentedClient struct {
	Client
	metrics *Metrics
}

func (c *instrumentedClient) GetConfig(ctx context.Context, dataID, group string) (string, error) {
	start := time.Now()
	content, err := c.Client.GetConfig(ctx, dataID, group)
	c.metrics.recordFetch(ctx, dataID, group, start, err)
	return content, err
}

func (c *instrumentedClient) AddListener(ctx context.Context, dataID, group string, listener Listener) error {
	return c.Client.AddListener(ctx, dataID, group, func(dataID, group, content string) {
		c.metrics.recordChange(dataID, group)
		listener(dataID, group, content)
	})
}
