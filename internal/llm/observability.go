package llm

import (
	"log/slog"
)

// LLMCallEvent records metadata about a single completion call.
type LLMCallEvent struct {
	Model      string
	LatencyMs  int64
	Success    bool
	StatusCode int
	ErrorCode  string
}

// Observer receives events about completion calls for logging and metrics.
type Observer interface {
	OnCallComplete(event LLMCallEvent)
}

// LogObserver writes call events through slog.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates an Observer that logs events to logger.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnCallComplete(event LLMCallEvent) {
	attrs := []any{
		"model", event.Model,
		"latency_ms", event.LatencyMs,
	}
	if event.StatusCode != 0 {
		attrs = append(attrs, "status_code", event.StatusCode)
	}
	if event.Success {
		o.logger.Info("llm_call", attrs...)
		return
	}
	o.logger.Warn("llm_call", append(attrs, "error_code", event.ErrorCode)...)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(LLMCallEvent) {}

// MultiObserver fans an event out to every observer.
type MultiObserver []Observer

func (m MultiObserver) OnCallComplete(event LLMCallEvent) {
	for _, o := range m {
		if o != nil {
			o.OnCallComplete(event)
		}
	}
}
