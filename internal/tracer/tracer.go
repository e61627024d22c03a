// Package tracer records executed inserts as tracing spans.
//
// DB opens one span per statement ("sqlstage.exec" or
// "sqlstage.query_column") and closes it with RecordStatement, which writes
// the OpenTelemetry database attributes and the span status.
package tracer

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer starts spans. NoopTracer is used when none is configured.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, Span)
}

// Span is the part of a span that RecordStatement writes to.
type Span interface {
	SetAttributes(attrs ...attribute.KeyValue)
	RecordError(err error)
	SetStatus(code codes.Code, description string)
	End()
}

// NoopTracer returns ctx unchanged and a span that drops everything.
type NoopTracer struct{}

func (n *NoopTracer) StartSpan(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) SetAttributes(_ ...attribute.KeyValue) {}
func (noopSpan) RecordError(_ error)                   {}
func (noopSpan) SetStatus(_ codes.Code, _ string)      {}
func (noopSpan) End()                                  {}

// OtelTracer starts spans on an OpenTelemetry tracer.
type OtelTracer struct {
	tracer trace.Tracer
}

// NewOtelTracer wraps tracer, which must not be nil.
func NewOtelTracer(tracer trace.Tracer) *OtelTracer {
	return &OtelTracer{tracer: tracer}
}

func (t *OtelTracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient))
	return ctx, otelSpan{span}
}

// otelSpan narrows trace.Span, whose methods take variadic options.
type otelSpan struct{ span trace.Span }

func (s otelSpan) SetAttributes(attrs ...attribute.KeyValue) { s.span.SetAttributes(attrs...) }
func (s otelSpan) RecordError(err error)                     { s.span.RecordError(err) }
func (s otelSpan) SetStatus(code codes.Code, desc string)    { s.span.SetStatus(code, desc) }
func (s otelSpan) End()                                      { s.span.End() }

// Statement is one executed statement as it is recorded on a span.
// Parameter values are never recorded, only their count.
type Statement struct {
	SQL          string
	ParamCount   int
	Elapsed      time.Duration
	RowsAffected int64
	Err          error
	System       string // postgresql, mysql, sqlite or sqlserver
	Operation    string
	Table        string
}

// RecordStatement writes s to span using the OpenTelemetry database
// conventions (db.system, db.statement, db.operation, db.sql.table) plus
// sqlstage's own timing and row counts.
func RecordStatement(span Span, s Statement) {
	attrs := []attribute.KeyValue{
		attribute.String("db.system", s.System),
		attribute.String("db.statement", s.SQL),
		attribute.String("db.operation", s.Operation),
		attribute.Float64("db.duration_ms", float64(s.Elapsed.Microseconds())/1000.0),
		attribute.Int("db.params.count", s.ParamCount),
	}
	if s.Table != "" {
		attrs = append(attrs,
			attribute.String("db.sql.table", s.Table),
			attribute.String("db.table", s.Table),
		)
	}
	if s.Err == nil {
		attrs = append(attrs, attribute.Int64("db.rows_affected", s.RowsAffected))
	}
	span.SetAttributes(attrs...)

	if s.Err != nil {
		span.RecordError(s.Err)
		span.SetStatus(codes.Error, s.Err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}

var insertTarget = regexp.MustCompile(`(?i)^\s*insert\s+into\s+("(?:[^"]|"")+"|\[[^\]]+\]|` + "`[^`]+`" + `|[^\s(]+)`)

// DetectTable returns the unquoted target table of an INSERT, or "".
func DetectTable(sql string) string {
	m := insertTarget.FindStringSubmatch(sql)
	if m == nil {
		return ""
	}
	name := m[1]
	switch name[0] {
	case '"':
		return strings.ReplaceAll(name[1:len(name)-1], `""`, `"`)
	case '[', '`':
		return name[1 : len(name)-1]
	}
	return name
}

// DetectOperation classifies a statement as INSERT or SELECT, the only two
// kinds this package compiles. Anything else is OTHER.
func DetectOperation(sql string) string {
	head := strings.ToUpper(strings.TrimSpace(sql))
	switch {
	case strings.HasPrefix(head, "INSERT"):
		return "INSERT"
	case strings.HasPrefix(head, "SELECT"), strings.HasPrefix(head, "WITH"):
		return "SELECT"
	}
	return "OTHER"
}
