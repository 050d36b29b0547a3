package obs

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const maxStatementLen = 300

type pgxSpanKey struct{}

// PGXTracer opens one span per query. Queries in internal/db start with a "-- name: X :kind"
// header; X becomes the span name so traces read "db ListProjects" instead of raw SQL.
type PGXTracer struct {
	// Tracer overrides the global tracer, mainly for tests.
	Tracer trace.Tracer
}

func (t PGXTracer) tracer() trace.Tracer {
	if t.Tracer != nil {
		return t.Tracer
	}
	return otel.Tracer("github.com/anisjkb/deed/internal/db")
}

// TraceQueryStart implements pgx.QueryTracer.
func (t PGXTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	name, body := splitQueryName(data.SQL)
	spanName := "db.query"
	if name != "" {
		spanName = "db " + name
	}
	attrs := []attribute.KeyValue{
		attribute.String("db.system", "postgresql"),
		attribute.String("db.statement", truncateStatement(body)),
	}
	if name != "" {
		attrs = append(attrs, attribute.String("db.query.name", name))
	}
	if fields := strings.Fields(body); len(fields) > 0 {
		attrs = append(attrs, attribute.String("db.operation", strings.ToUpper(fields[0])))
	}
	ctx, span := t.tracer().Start(ctx, spanName, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
	return context.WithValue(ctx, pgxSpanKey{}, span)
}

// TraceQueryEnd implements pgx.QueryTracer.
func (PGXTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	span, ok := ctx.Value(pgxSpanKey{}).(trace.Span)
	if !ok {
		return
	}
	if data.Err != nil && !errors.Is(data.Err, pgx.ErrNoRows) {
		span.RecordError(data.Err)
		span.SetStatus(codes.Error, data.Err.Error())
	} else {
		span.SetAttributes(attribute.Int64("db.rows_affected", data.CommandTag.RowsAffected()))
	}
	span.End()
}

// splitQueryName pulls X out of a leading "-- name: X :kind" line and returns the rest of the SQL.
func splitQueryName(sql string) (string, string) {
	trimmed := strings.TrimSpace(sql)
	header, rest, found := strings.Cut(trimmed, "\n")
	if !found || !strings.HasPrefix(header, "-- name:") {
		return "", trimmed
	}
	fields := strings.Fields(strings.TrimPrefix(header, "-- name:"))
	if len(fields) == 0 {
		return "", strings.TrimSpace(rest)
	}
	return fields[0], strings.TrimSpace(rest)
}

func truncateStatement(sql string) string {
	if len(sql) > maxStatementLen {
		return sql[:maxStatementLen] + "..."
	}
	return sql
}
