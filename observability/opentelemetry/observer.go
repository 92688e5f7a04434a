package opentelemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"willitserver"
)

const eventName = "boundary.check"

var _ willitserver.Observer = Observer{}

// Observer records boundary checks on the span carried by the call's
// context. Calls without a recording span are ignored.
type Observer struct{}

func NewObserver() Observer {
	return Observer{}
}

func (Observer) Observe(ctx context.Context, function string, dir willitserver.Direction, passed bool) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(eventName, trace.WithAttributes(
		attribute.String("boundary.function", function),
		attribute.String("boundary.direction", dir.String()),
		attribute.Bool("boundary.passed", passed),
	))
	if !passed {
		span.SetAttributes(attribute.Bool("boundary."+dir.String()+".unsafe", true))
	}
}
