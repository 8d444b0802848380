package links

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shortloop/shortloop/internal/events"
	"github.com/shortloop/shortloop/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// reservedCodes are top-level path segments owned by other routes. The
// redirect catch-all must never shadow them, and they are rejected before
// any store access. Creation refuses them as custom aliases for the same
// reason.
var reservedCodes = map[string]struct{}{
	"api":      {},
	"auth":     {},
	"admin":    {},
	"settings": {},
	"health":   {},
	"metrics":  {},
}

func isReservedCode(code string) bool {
	_, ok := reservedCodes[strings.ToLower(code)]
	return ok
}

// RedirectService is the redirect orchestrator: code shape checks, then
// resolution, then lifecycle, then target safety, in ascending order of
// cost. On success it emits a click event without ever letting the emission
// fail the redirect.
type RedirectService struct {
	resolver  *Resolver
	publisher Publisher
	topic     string

	asyncClick  bool
	emitTimeout time.Duration
	now         func() time.Time
}

type RedirectOptions struct {
	ClickTopic string
	// AsyncClick publishes the click on a detached goroutine (the
	// default). Synchronous mode still swallows publish errors; it exists
	// for deterministic tests.
	AsyncClick  bool
	EmitTimeout time.Duration
}

func NewRedirectService(resolver *Resolver, publisher Publisher) *RedirectService {
	return NewRedirectServiceWithOptions(resolver, publisher, RedirectOptions{
		ClickTopic:  events.TopicLinkClicked,
		AsyncClick:  true,
		EmitTimeout: 2 * time.Second,
	})
}

func NewRedirectServiceWithOptions(resolver *Resolver, publisher Publisher, opts RedirectOptions) *RedirectService {
	if opts.ClickTopic == "" {
		opts.ClickTopic = events.TopicLinkClicked
	}
	if opts.EmitTimeout <= 0 {
		opts.EmitTimeout = 2 * time.Second
	}

	return &RedirectService{
		resolver:    resolver,
		publisher:   publisher,
		topic:       opts.ClickTopic,
		asyncClick:  opts.AsyncClick,
		emitTimeout: opts.EmitTimeout,
		now:         time.Now,
	}
}

// Redirect resolves code and returns the destination URL, or one of the
// package sentinel errors: ErrReservedCode, ErrNotFound, ErrInactive,
// ErrExpired, ErrUnsafeTarget, ErrStoreUnavailable. The inactive check
// precedes the expiry check so a link that is both reports inactive.
func (s *RedirectService) Redirect(ctx context.Context, code string, click ClickContext) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", ErrNotFound
	}
	if isReservedCode(code) {
		return "", ErrReservedCode
	}

	link, err := s.resolver.Resolve(ctx, code)
	if err != nil {
		return "", err
	}

	if !link.IsActive {
		return "", ErrInactive
	}
	if link.ExpiresAt != nil && !link.ExpiresAt.After(s.now().UTC()) {
		return "", ErrExpired
	}

	if IsUnsafeRedirectTarget(link.OriginalURL) {
		return "", ErrUnsafeTarget
	}

	s.emitClick(link, code, click)
	return link.OriginalURL, nil
}

// emitClick publishes a LinkClicked event, best-effort. A fresh eventId per
// attempt lets the downstream idempotent insert collapse duplicates from
// retried sends. Publish failures are logged and dropped.
func (s *RedirectService) emitClick(link *Link, code string, click ClickContext) {
	if s.publisher == nil {
		return
	}

	event := events.LinkClicked{
		EventID:   uuid.New().String(),
		LinkID:    link.ID,
		Code:      code,
		ClickedAt: s.now().UTC().Format(time.RFC3339Nano),
		Referrer:  nullable(click.Referrer),
		UserAgent: nullable(click.UserAgent),
		IPHash:    nullable(click.IPHash),
		Country:   nullable(click.Country),
	}

	if s.asyncClick {
		go s.publishClick(event)
		return
	}
	s.publishClick(event)
}

func (s *RedirectService) publishClick(event events.LinkClicked) {
	// Own panic boundary: a misbehaving publisher must not take down the
	// request goroutine or the process.
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("click publish panicked",
				zap.Any("panic", rec), zap.String("event_id", event.EventID))
		}
	}()

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Warn("failed to marshal click event",
			zap.Error(err), zap.String("event_id", event.EventID))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.emitTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, s.topic, event.Code, payload); err != nil {
		logger.Warn("failed to publish click event",
			zap.Error(err),
			zap.String("event_id", event.EventID),
			zap.String("code", event.Code),
		)
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
