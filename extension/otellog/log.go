// Package otellog provides OpenTelemetry instrumentation for event.Log
// implementations: one span per operation, plus counters and duration
// histograms for appends and loads.
package otellog

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/eventfold/go-eventfold/event"
	"github.com/eventfold/go-eventfold/version"
)

const instrumentationName = "github.com/eventfold/go-eventfold/extension/otellog"

// Option can be used to change the configuration of an InstrumentedLog.
type Option func(*config)

type config struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// WithTracerProvider specifies the trace.TracerProvider to use;
// the global provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *config) { cfg.tracerProvider = tp }
}

// WithMeterProvider specifies the metric.MeterProvider to use;
// the global provider is used otherwise.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(cfg *config) { cfg.meterProvider = mp }
}

// Interface implementation assertion.
var _ event.Log = &InstrumentedLog{}

// InstrumentedLog is a wrapper providing OpenTelemetry instrumentation for
// event.Log compatible implementations, usable seamlessly wherever a Log
// is expected.
//
// Use Instrument to create new instances of this type.
type InstrumentedLog struct {
	log    event.Log
	tracer trace.Tracer
	meter  metric.Meter

	appendCount    metric.Int64Counter
	appendDuration metric.Float64Histogram
	loadCount      metric.Int64Counter
	loadDuration   metric.Float64Histogram
}

func (il *InstrumentedLog) registerMetrics() error {
	var err error

	wrapErr := func(err error) error {
		return fmt.Errorf("otellog: failed to register metric, %w", err)
	}

	if il.appendCount, err = il.meter.Int64Counter(
		"eventfold.log.append.count",
		metric.WithDescription("Count of append operations performed"),
	); err != nil {
		return wrapErr(err)
	}

	if il.appendDuration, err = il.meter.Float64Histogram(
		"eventfold.log.append.duration",
		metric.WithUnit("ms"),
		metric.WithDescription("Duration of append operations performed"),
	); err != nil {
		return wrapErr(err)
	}

	if il.loadCount, err = il.meter.Int64Counter(
		"eventfold.log.load.count",
		metric.WithDescription("Count of load operations performed"),
	); err != nil {
		return wrapErr(err)
	}

	if il.loadDuration, err = il.meter.Float64Histogram(
		"eventfold.log.load.duration",
		metric.WithUnit("ms"),
		metric.WithDescription("Duration of load operations performed"),
	); err != nil {
		return wrapErr(err)
	}

	return nil
}

// Instrument creates a new InstrumentedLog instance wrapping the
// provided Log.
func Instrument(log event.Log, opts ...Option) (*InstrumentedLog, error) {
	cfg := &config{
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	il := &InstrumentedLog{
		log:    log,
		tracer: cfg.tracerProvider.Tracer(instrumentationName),
		meter:  cfg.meterProvider.Meter(instrumentationName),
	}

	if err := il.registerMetrics(); err != nil {
		return nil, err
	}

	return il, nil
}

// Append delegates the call to the underlying Log, recording a trace
// and metrics of the result.
func (il *InstrumentedLog) Append(ctx context.Context, evt event.Event) error {
	attributes := []attribute.KeyValue{
		StreamTypeAttribute.String(evt.Stream.Type),
		StreamNameAttribute.String(evt.Stream.Name),
		EventTypeAttribute.String(evt.Type()),
		EventVersionAttribute.Int64(int64(evt.Version)),
	}

	ctx, span := il.tracer.Start(ctx, "Log.Append", trace.WithAttributes(attributes...))
	defer span.End()

	start := time.Now()
	err := il.log.Append(ctx, evt)

	if err != nil {
		span.RecordError(err)
	}

	il.appendCount.Add(ctx, 1, metric.WithAttributes(
		append(attributes, ErrorAttribute.Bool(err != nil))...,
	))
	il.appendDuration.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(attributes...))

	return err
}

// Load delegates the call to the underlying Log, recording a trace
// and metrics of the result.
func (il *InstrumentedLog) Load(ctx context.Context, id event.StreamID) ([]event.Event, error) {
	attributes := []attribute.KeyValue{
		StreamTypeAttribute.String(id.Type),
		StreamNameAttribute.String(id.Name),
	}

	ctx, span := il.tracer.Start(ctx, "Log.Load", trace.WithAttributes(attributes...))
	defer span.End()

	start := time.Now()
	events, err := il.log.Load(ctx, id)

	if err != nil {
		span.RecordError(err)
	}

	il.loadCount.Add(ctx, 1, metric.WithAttributes(
		append(attributes, ErrorAttribute.Bool(err != nil))...,
	))
	il.loadDuration.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(attributes...))

	return events, err
}

// LatestVersion delegates the call to the underlying Log, recording
// a trace of the result.
func (il *InstrumentedLog) LatestVersion(ctx context.Context, id event.StreamID) (version.Version, error) {
	ctx, span := il.tracer.Start(ctx, "Log.LatestVersion", trace.WithAttributes(
		StreamTypeAttribute.String(id.Type),
		StreamNameAttribute.String(id.Name),
	))
	defer span.End()

	latest, err := il.log.LatestVersion(ctx, id)
	if err != nil {
		span.RecordError(err)
	}

	return latest, err
}

// Exists delegates the call to the underlying Log, recording a trace
// of the result.
func (il *InstrumentedLog) Exists(ctx context.Context, id event.StreamID) (bool, error) {
	ctx, span := il.tracer.Start(ctx, "Log.Exists", trace.WithAttributes(
		StreamTypeAttribute.String(id.Type),
		StreamNameAttribute.String(id.Name),
	))
	defer span.End()

	exists, err := il.log.Exists(ctx, id)
	if err != nil {
		span.RecordError(err)
	}

	return exists, err
}

// StreamNames delegates the call to the underlying Log, recording
// a trace of the result.
func (il *InstrumentedLog) StreamNames(ctx context.Context, streamType string) ([]string, error) {
	ctx, span := il.tracer.Start(ctx, "Log.StreamNames", trace.WithAttributes(
		StreamTypeAttribute.String(streamType),
	))
	defer span.End()

	names, err := il.log.StreamNames(ctx, streamType)
	if err != nil {
		span.RecordError(err)
	}

	return names, err
}
