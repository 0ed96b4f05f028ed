package occ

import (
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/viant/occ/tracing"
	"github.com/viant/occ/transport"
)

// Option configures a Service at construction time, mirroring fluxor's
// root option.go functional-option style.
type Option func(s *Service)

// WithConfig overrides the transport knobs (ask timeout, max attempts,
// retry interval). Defaults to DefaultConfig() when not supplied.
func WithConfig(cfg *Config) Option {
	return func(s *Service) { s.config = cfg }
}

// WithTransport overrides the Transport used by CanCommit. Defaults to an
// in-memory transport wrapping the Service's own dispatcher; a host that
// wants to expose the coordinator to out-of-process task code supplies its
// own networked Transport here: the transport's wire format is an external
// concern, the coordinator only depends on the Transport contract.
func WithTransport(t transport.Transport) Option {
	return func(s *Service) { s.transport = t }
}

// WithTracing configures OpenTelemetry tracing for the dispatcher. If
// outputFile is empty the stdout exporter is used. Safe to call multiple
// times — the first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) { _ = tracing.Init(serviceName, serviceVersion, outputFile) }
}

// WithTracingExporter configures OpenTelemetry tracing using a custom
// SpanExporter (OTLP, Jaeger, Zipkin, ...).
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) { _ = tracing.InitWithExporter(serviceName, serviceVersion, exporter) }
}
