package observability

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Span is a minimal in-process trace span used around request handling and
// dataset loads. There is no exporter; finished spans only feed log fields.
type Span struct {
	TraceID   string            `json:"trace_id"`
	SpanID    string            `json:"span_id"`
	ParentID  string            `json:"parent_id,omitempty"`
	Operation string            `json:"operation"`
	StartTime time.Time         `json:"start_time"`
	Duration  time.Duration     `json:"duration,omitempty"`
	Tags      map[string]string `json:"tags,omitempty"`
	Err       string            `json:"error,omitempty"`
}

type spanContextKey struct{}

func StartSpan(ctx context.Context, operation string) (context.Context, *Span) {
	span := &Span{
		TraceID:   newID(),
		SpanID:    newID(),
		Operation: operation,
		StartTime: time.Now(),
		Tags:      make(map[string]string),
	}
	if parent := SpanFromContext(ctx); parent != nil {
		span.TraceID = parent.TraceID
		span.ParentID = parent.SpanID
	}
	return context.WithValue(ctx, spanContextKey{}, span), span
}

func (s *Span) Finish() {
	s.Duration = time.Since(s.StartTime)
}

func (s *Span) SetTag(key, value string) {
	s.Tags[key] = value
}

func (s *Span) SetError(err error) {
	if err != nil {
		s.Err = err.Error()
	}
}

func SpanFromContext(ctx context.Context) *Span {
	if span, ok := ctx.Value(spanContextKey{}).(*Span); ok {
		return span
	}
	return nil
}

func newID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
