// Package service implements the charity fund use cases on top of a
// domain.Store: it validates requests, runs allocation passes inside a
// serialized transaction and writes the results back.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"qrkot/internal/domain"
)

const maxNameLength = 100

// Service is safe for concurrent use; serialization of allocation passes is
// delegated to the store.
type Service struct {
	store  domain.Store
	logger zerolog.Logger
	tracer trace.Tracer
	now    func() time.Time
	newID  func() string
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source used for creation and close stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides record id generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// New builds a Service backed by store.
func New(store domain.Store, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: logger.With().Str("component", "charity").Logger(),
		tracer: otel.Tracer("qrkot/internal/service"),
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Millisecond)
		},
		newID: func() string {
			return uuid.Must(uuid.NewV7()).String()
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "charity."+name)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
