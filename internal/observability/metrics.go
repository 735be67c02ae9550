package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprometheus "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"

	"github.com/vizdeck/vizdeck-go/internal/domain/dao"
)

// Common attribute keys
var (
	AttrHTTPMethod     = attribute.Key("http.method")
	AttrHTTPRoute      = attribute.Key("http.route")
	AttrHTTPStatusCode = attribute.Key("http.status_code")
	AttrEntity         = attribute.Key("dao.entity")
	AttrOperation      = attribute.Key("dao.operation")
	AttrStatus         = attribute.Key("dao.status")
)

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	PrometheusPath string `mapstructure:"prometheus_path"`
}

// DefaultMetricsConfig returns default metrics configuration
func DefaultMetricsConfig() *MetricsConfig {
	return &MetricsConfig{
		Enabled:        true,
		ServiceName:    "vizdeck",
		PrometheusPath: "/metrics",
	}
}

// MetricsProvider manages OpenTelemetry metrics
type MetricsProvider struct {
	config        *MetricsConfig
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	logger        *zap.Logger
	registry      *prometheus.Registry
	handler       http.Handler

	httpRequestsTotal    metric.Int64Counter
	httpRequestDuration  metric.Float64Histogram
	daoOperationsTotal   metric.Int64Counter
	daoOperationDuration metric.Float64Histogram
	listRowsReturned     metric.Int64Histogram
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(config *MetricsConfig, logger *zap.Logger) (*MetricsProvider, error) {
	if !config.Enabled {
		return &MetricsProvider{
			config: config,
			meter:  otel.Meter(config.ServiceName),
			logger: logger,
		}, nil
	}

	registry := prometheus.NewRegistry()
	exporter, err := otelprometheus.New(
		otelprometheus.WithRegisterer(registry),
	)
	if err != nil {
		return nil, err
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(meterProvider)

	mp := &MetricsProvider{
		config:        config,
		meterProvider: meterProvider,
		meter:         meterProvider.Meter(config.ServiceName),
		logger:        logger,
		registry:      registry,
		handler:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}

	if err := mp.initMetrics(); err != nil {
		return nil, err
	}

	logger.Info("OpenTelemetry metrics initialized",
		zap.String("service", config.ServiceName),
		zap.String("prometheus_path", config.PrometheusPath),
	)

	return mp, nil
}

// initMetrics initializes common metrics
func (mp *MetricsProvider) initMetrics() error {
	var err error

	mp.httpRequestsTotal, err = mp.meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return err
	}

	mp.httpRequestDuration, err = mp.meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	mp.daoOperationsTotal, err = mp.meter.Int64Counter(
		"dao_operations_total",
		metric.WithDescription("Total number of DAO operations"),
	)
	if err != nil {
		return err
	}

	mp.daoOperationDuration, err = mp.meter.Float64Histogram(
		"dao_operation_duration_seconds",
		metric.WithDescription("DAO operation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	mp.listRowsReturned, err = mp.meter.Int64Histogram(
		"list_rows_returned",
		metric.WithDescription("Rows returned per list query"),
	)
	return err
}

// RecordHTTPRequest records an HTTP request metric
func (mp *MetricsProvider) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if mp.httpRequestsTotal == nil {
		return
	}

	attrs := metric.WithAttributes(
		AttrHTTPMethod.String(method),
		AttrHTTPRoute.String(path),
		AttrHTTPStatusCode.Int(statusCode),
	)

	mp.httpRequestsTotal.Add(ctx, 1, attrs)
	mp.httpRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordListRows records the row count of one list query.
func (mp *MetricsProvider) RecordListRows(ctx context.Context, entity string, rows int) {
	if mp.listRowsReturned == nil {
		return
	}
	mp.listRowsReturned.Record(ctx, int64(rows), metric.WithAttributes(
		AttrEntity.String(entity),
	))
}

// DAORecorder returns the hook the DAOs call once per operation.
func (mp *MetricsProvider) DAORecorder() dao.OpRecorder {
	return func(entity, operation string, elapsed time.Duration, err error) {
		if mp.daoOperationsTotal == nil {
			return
		}
		status := "ok"
		if err != nil {
			status = "error"
		}
		attrs := metric.WithAttributes(
			AttrEntity.String(entity),
			AttrOperation.String(operation),
			AttrStatus.String(status),
		)
		ctx := context.Background()
		mp.daoOperationsTotal.Add(ctx, 1, attrs)
		mp.daoOperationDuration.Record(ctx, elapsed.Seconds(), attrs)
	}
}

// Handler returns an HTTP handler for Prometheus metrics
func (mp *MetricsProvider) Handler() http.Handler {
	if mp.handler != nil {
		return mp.handler
	}
	return http.NotFoundHandler()
}

// Meter returns the meter for creating custom metrics
func (mp *MetricsProvider) Meter() metric.Meter {
	return mp.meter
}

// Shutdown gracefully shuts down the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}
