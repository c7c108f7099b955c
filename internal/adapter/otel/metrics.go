package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "movi"

// Metrics holds all Movi metric instruments.
type Metrics struct {
	TurnsStarted       metric.Int64Counter
	TurnsFailed        metric.Int64Counter
	ToolCalls          metric.Int64Counter
	ConfirmationsAsked metric.Int64Counter
	ConfirmationsYes   metric.Int64Counter
	ConfirmationsNo    metric.Int64Counter
	TurnDuration       metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.TurnsStarted, err = meter.Int64Counter("movi.turns.started",
		metric.WithDescription("Number of chat turns started"))
	if err != nil {
		return nil, err
	}

	m.TurnsFailed, err = meter.Int64Counter("movi.turns.failed",
		metric.WithDescription("Number of chat turns that ended in error"))
	if err != nil {
		return nil, err
	}

	m.ToolCalls, err = meter.Int64Counter("movi.toolcalls",
		metric.WithDescription("Number of tool executions"))
	if err != nil {
		return nil, err
	}

	m.ConfirmationsAsked, err = meter.Int64Counter("movi.confirmations.asked",
		metric.WithDescription("Number of confirmation prompts issued"))
	if err != nil {
		return nil, err
	}

	m.ConfirmationsYes, err = meter.Int64Counter("movi.confirmations.confirmed",
		metric.WithDescription("Number of confirmed high-risk actions"))
	if err != nil {
		return nil, err
	}

	m.ConfirmationsNo, err = meter.Int64Counter("movi.confirmations.cancelled",
		metric.WithDescription("Number of cancelled high-risk actions"))
	if err != nil {
		return nil, err
	}

	m.TurnDuration, err = meter.Float64Histogram("movi.turn.duration_seconds",
		metric.WithDescription("Chat turn duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
