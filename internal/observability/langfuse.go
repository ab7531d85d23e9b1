// Package observability wraps Langfuse tracing for LLM collaborator calls.
// The tracer is constructor-injected: callers hold their own instance rather
// than reaching for package state, so two engines in one process never share
// a trace.
package observability

import (
	"context"
	"log"
	"time"

	langfuse "github.com/henomis/langfuse-go"
	"github.com/henomis/langfuse-go/model"

	"github.com/memoryreel/memoryreel/internal/llm"
)

// Tracer wraps the Langfuse client. A disabled tracer is fully functional:
// every method is a no-op, so call sites never branch on configuration.
type Tracer struct {
	client  *langfuse.Langfuse
	enabled bool
}

// NewTracer creates a tracer. When enabled is false, or the SDK environment
// (LANGFUSE_SECRET_KEY etc.) is not set up, the tracer silently does nothing.
func NewTracer(ctx context.Context, enabled bool) *Tracer {
	if !enabled {
		log.Println("⚠️  Langfuse tracing disabled")
		return &Tracer{enabled: false}
	}

	client := langfuse.New(ctx)
	log.Println("✅ Langfuse tracing initialized")
	return &Tracer{client: client, enabled: true}
}

// IsEnabled reports whether spans are actually recorded.
func (t *Tracer) IsEnabled() bool {
	return t.enabled && t.client != nil
}

// StartTrace opens a trace for one engine run (e.g. one movie project).
func (t *Tracer) StartTrace(name string, metadata map[string]interface{}) *Trace {
	if !t.IsEnabled() {
		return &Trace{enabled: false}
	}

	trace, err := t.client.Trace(&model.Trace{
		Name:     name,
		Metadata: metadata,
	})
	if err != nil {
		log.Printf("⚠️  Failed to create Langfuse trace: %v", err)
		return &Trace{enabled: false}
	}

	return &Trace{
		trace:   trace,
		client:  t.client,
		enabled: true,
	}
}

// Flush blocks until all queued events have been sent.
func (t *Tracer) Flush(ctx context.Context) {
	if t.IsEnabled() {
		t.client.Flush(ctx)
	}
}

// Trace groups the generations of one engine run.
type Trace struct {
	trace   *model.Trace
	client  *langfuse.Langfuse
	enabled bool
}

// Generation opens a generation span within the trace, for one LLM call.
func (tr *Trace) Generation(name, modelName string, metadata map[string]interface{}) *Generation {
	if !tr.enabled {
		return &Generation{enabled: false}
	}

	now := time.Now()
	gen, err := tr.client.Generation(&model.Generation{
		TraceID:   tr.trace.ID,
		Name:      name,
		Model:     modelName,
		StartTime: &now,
		Metadata:  metadata,
	}, nil)
	if err != nil {
		log.Printf("⚠️  Failed to create Langfuse generation: %v", err)
		return &Generation{enabled: false}
	}

	return &Generation{
		generation: gen,
		client:     tr.client,
		enabled:    true,
	}
}

// Generation is one LLM call inside a trace.
type Generation struct {
	generation *model.Generation
	client     *langfuse.Langfuse
	enabled    bool
}

// End records the outcome of the call and queues the generation for sending.
// Any of input, output, or usage may be zero values when unknown.
func (g *Generation) End(input, output string, usage llm.Usage) {
	if !g.enabled || g.generation == nil || g.client == nil {
		return
	}

	now := time.Now()
	g.generation.EndTime = &now
	if input != "" {
		g.generation.Input = input
	}
	if output != "" {
		g.generation.Output = output
	}
	if usage.TotalTokens > 0 {
		g.generation.Usage = model.Usage{
			Input:  int(usage.InputTokens),
			Output: int(usage.OutputTokens),
			Total:  int(usage.TotalTokens),
			Unit:   model.ModelUsageUnitTokens,
		}
		cost := FormatCost(CalculateCost(g.generation.Model, usage))
		if md, ok := g.generation.Metadata.(map[string]interface{}); ok {
			md["cost_usd"] = cost
		} else {
			g.generation.Metadata = map[string]interface{}{"cost_usd": cost}
		}
	}

	if _, err := g.client.GenerationEnd(g.generation); err != nil {
		log.Printf("⚠️  Failed to end Langfuse generation: %v", err)
	}
}

// EndWithError marks the generation as failed.
func (g *Generation) EndWithError(genErr error) {
	if !g.enabled || g.generation == nil || g.client == nil {
		return
	}

	now := time.Now()
	g.generation.EndTime = &now
	g.generation.Level = model.ObservationLevelError
	g.generation.StatusMessage = genErr.Error()

	if _, err := g.client.GenerationEnd(g.generation); err != nil {
		log.Printf("⚠️  Failed to end Langfuse generation: %v", err)
	}
}
