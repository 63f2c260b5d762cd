// Package tracing 基于 OpenTelemetry 的分布式追踪，
// 导出器支持 otlp-grpc、otlp-http 和 zipkin.
//
//	if err := tracing.InitTracer(cfg.Tracing); err != nil {
//		log.Fatal(err)
//	}
//	defer tracing.ShutdownTracer(ctx)
//
//	ctx, span := tracing.StartSpan(ctx, "document.sign")
//	defer span.End()
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/docshield/docshield/pkg/configs"
)

const tracerName = "docshield"

var tracerProvider *sdktrace.TracerProvider

func newExporter(ctx context.Context, config configs.TracingConfig) (sdktrace.SpanExporter, error) {
	switch config.ExporterType {
	case "otlp-grpc":
		return otlptracegrpc.New(ctx, otlptracegrpc.WithEndpoint(config.Endpoint))
	case "otlp-http":
		return otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(config.Endpoint))
	case "zipkin":
		return zipkin.New(config.Endpoint)
	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", config.ExporterType)
	}
}

// InitTracer 按配置装配全局 TracerProvider，Enabled 为 false 时是 no-op.
func InitTracer(config configs.TracingConfig) error {
	if !config.Enabled {
		return nil
	}

	ctx := context.Background()

	attrs := []attribute.KeyValue{
		semconv.ServiceNameKey.String(config.ServiceName),
		semconv.ServiceVersionKey.String(config.ServiceVersion),
	}
	for k, v := range config.ResourceLabels {
		attrs = append(attrs, attribute.String(k, v))
	}

	res, err := resource.New(ctx, resource.WithAttributes(attrs...))
	if err != nil {
		return fmt.Errorf("create trace resource: %w", err)
	}

	exporter, err := newExporter(ctx, config)
	if err != nil {
		return fmt.Errorf("create %s exporter: %w", config.ExporterType, err)
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(config.BatchTimeout),
			sdktrace.WithMaxExportBatchSize(config.MaxBatchSize),
			sdktrace.WithMaxQueueSize(config.MaxQueueSize),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(config.SampleRate)),
	)

	otel.SetTracerProvider(tracerProvider)

	return nil
}

// ShutdownTracer 冲刷并关闭导出器；未启用追踪时直接返回.
func ShutdownTracer(ctx context.Context) error {
	if tracerProvider == nil {
		return nil
	}

	return tracerProvider.Shutdown(ctx)
}

// StartSpan 在服务默认 tracer 上开一个 span，调用方负责 span.End().
func StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, spanName, opts...)
}

// GetTracer 获取命名 tracer，给需要独立 instrumentation scope 的包用.
func GetTracer(name string) trace.Tracer {
	return otel.Tracer(name)
}
