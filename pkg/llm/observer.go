package llm

import (
	"context"
	"time"

	"github.com/jasonyy2018/rresume/internal/logger"
)

// LLMObserver receives a notification after every provider call,
// successful or not. Implementations must not block.
type LLMObserver interface {
	OnLLMCall(ctx context.Context, event LLMCallEvent)
}

// LLMCallEvent contains all information about an LLM call.
type LLMCallEvent struct {
	// Operation is the pipeline step that issued the call (e.g. "parse-pdf").
	Operation string

	Provider string
	Model    string

	Request LLMCallRequest

	// Response is nil if the call failed before getting a response.
	Response *LLMCallResponse

	Error     error
	Duration  time.Duration
	StartedAt time.Time
}

// LLMCallRequest summarises the request sent to the LLM. File contents are
// not retained, only their sizes.
type LLMCallRequest struct {
	Messages        int
	MaxTokens       int
	Temperature     float64
	StructuredJSON  bool
	AttachmentBytes int
}

// LLMCallResponse contains the response from the LLM.
type LLMCallResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	FinishReason string
}

// NewCallEvent builds the event for one Execute call.
func NewCallEvent(op string, p Provider, req Request, resp *Response, err error, started time.Time) LLMCallEvent {
	ev := LLMCallEvent{
		Operation: op,
		Provider:  p.Name(),
		Model:     p.Model(),
		Request: LLMCallRequest{
			Messages:       len(req.Messages),
			MaxTokens:      req.MaxTokens,
			Temperature:    req.Temperature,
			StructuredJSON: req.JSONSchema != nil,
		},
		Error:     err,
		Duration:  time.Since(started),
		StartedAt: started,
	}
	for _, m := range req.Messages {
		for _, a := range m.Attachments {
			ev.Request.AttachmentBytes += len(a.Data)
		}
	}
	if resp != nil {
		if resp.Model != "" {
			ev.Model = resp.Model
		}
		ev.Response = &LLMCallResponse{
			Content:      resp.Content,
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
			FinishReason: resp.FinishReason,
		}
	}
	return ev
}

// ObserverFunc is a convenience type for using a function as an LLMObserver.
type ObserverFunc func(ctx context.Context, event LLMCallEvent)

// OnLLMCall implements LLMObserver.
func (f ObserverFunc) OnLLMCall(ctx context.Context, event LLMCallEvent) {
	f(ctx, event)
}

// MultiObserver combines multiple observers into one.
type MultiObserver struct {
	observers []LLMObserver
}

// NewMultiObserver creates an observer that dispatches to multiple observers.
func NewMultiObserver(observers ...LLMObserver) *MultiObserver {
	return &MultiObserver{observers: observers}
}

// OnLLMCall dispatches the event to all registered observers.
func (m *MultiObserver) OnLLMCall(ctx context.Context, event LLMCallEvent) {
	for _, obs := range m.observers {
		obs.OnLLMCall(ctx, event)
	}
}

// Add adds an observer to the multi-observer.
func (m *MultiObserver) Add(obs LLMObserver) {
	m.observers = append(m.observers, obs)
}

// LogObserver writes one structured log line per call.
type LogObserver struct{}

// OnLLMCall implements LLMObserver.
func (LogObserver) OnLLMCall(ctx context.Context, ev LLMCallEvent) {
	args := []any{
		"op", ev.Operation,
		"provider", ev.Provider,
		"model", ev.Model,
		"duration", ev.Duration.Round(time.Millisecond),
		"structured", ev.Request.StructuredJSON,
	}
	if ev.Request.AttachmentBytes > 0 {
		args = append(args, "attachment_bytes", ev.Request.AttachmentBytes)
	}
	if ev.Error != nil {
		logger.WarnContext(ctx, "llm call failed", append(args, "error", ev.Error)...)
		return
	}
	if ev.Response != nil {
		args = append(args,
			"input_tokens", ev.Response.InputTokens,
			"output_tokens", ev.Response.OutputTokens,
			"finish_reason", ev.Response.FinishReason,
		)
	}
	logger.DebugContext(ctx, "llm call", args...)
}
