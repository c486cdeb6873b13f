// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/vidshare/internal/logging"
	"github.com/tomtom215/vidshare/internal/metrics"
)

// TopicEmail carries rendered messages to the send handler.
const TopicEmail = "notify.email"

// QueueConfig tunes the background email queue.
type QueueConfig struct {
	// SendRate is the maximum messages per second. 0 disables throttling.
	SendRate float64
	// SendBurst is the limiter burst. Default: 1
	SendBurst int
	// SendTimeout bounds a single delivery attempt. Default: 30s
	SendTimeout time.Duration
	// CloseTimeout is how long handlers get to finish on shutdown. Default: 10s
	CloseTimeout time.Duration
	// Buffer is the in-memory channel buffer. Default: 256
	Buffer int64
}

// Queue sends email in the background. Publishing never blocks the caller on
// delivery, and failed sends are logged and dropped.
//
// Run builds a fresh watermill router on every call so the supervisor can
// restart it; the underlying gochannel pub/sub lives as long as the Queue.
type Queue struct {
	sender  Sender
	pubsub  *gochannel.GoChannel
	limiter *rate.Limiter
	logger  watermill.LoggerAdapter
	cfg     QueueConfig

	readyOnce sync.Once
	ready     chan struct{}
}

// NewQueue creates a queue delivering through sender.
func NewQueue(sender Sender, cfg QueueConfig) *Queue {
	if cfg.SendBurst <= 0 {
		cfg.SendBurst = 1
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = 10 * time.Second
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 256
	}

	limit := rate.Inf
	if cfg.SendRate > 0 {
		limit = rate.Limit(cfg.SendRate)
	}
	logger := logging.NewWatermillLogger("notify-queue")

	return &Queue{
		sender:  sender,
		pubsub:  gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: cfg.Buffer}, logger),
		limiter: rate.NewLimiter(limit, cfg.SendBurst),
		logger:  logger,
		cfg:     cfg,
		ready:   make(chan struct{}),
	}
}

// Enqueue publishes msg for background delivery.
func (q *Queue) Enqueue(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode email task: %w", err)
	}
	m := message.NewMessage(watermill.NewUUID(), payload)
	if id := logging.RequestIDFromContext(ctx); id != "" {
		m.Metadata.Set("request_id", id)
	}
	if err := q.pubsub.Publish(TopicEmail, m); err != nil {
		return fmt.Errorf("publish email task: %w", err)
	}
	metrics.EmailQueueDepth.Inc()
	return nil
}

// Ready is closed once the first router is consuming.
func (q *Queue) Ready() <-chan struct{} {
	return q.ready
}

// Run consumes the queue until ctx is canceled.
func (q *Queue) Run(ctx context.Context) error {
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: q.cfg.CloseTimeout}, q.logger)
	if err != nil {
		return fmt.Errorf("create email router: %w", err)
	}
	router.AddMiddleware(middleware.Recoverer)
	router.AddConsumerHandler("email-sender", TopicEmail, keepOpen{q.pubsub}, q.handle)

	go func() {
		select {
		case <-router.Running():
			q.readyOnce.Do(func() { close(q.ready) })
		case <-ctx.Done():
		}
	}()

	if err := router.Run(ctx); err != nil {
		return fmt.Errorf("email router: %w", err)
	}
	return ctx.Err()
}

// Close releases the pub/sub. Messages still buffered are dropped.
func (q *Queue) Close() error {
	return q.pubsub.Close()
}

// handle delivers one message. It always acks: a failed email is logged and
// counted, never retried or surfaced to the request that queued it.
func (q *Queue) handle(m *message.Message) error {
	defer metrics.EmailQueueDepth.Dec()

	var msg Message
	if err := json.Unmarshal(m.Payload, &msg); err != nil {
		logging.Error().Err(err).Str("message_uuid", m.UUID).Msg("Dropping malformed email task")
		return nil
	}

	ctx, cancel := context.WithTimeout(m.Context(), q.cfg.SendTimeout)
	defer cancel()
	if id := m.Metadata.Get("request_id"); id != "" {
		ctx = logging.ContextWithRequestID(ctx, id)
	}

	if err := q.limiter.Wait(ctx); err != nil {
		metrics.RecordEmailSend(msg.Template, err)
		logging.Ctx(ctx).Warn().Err(err).Str("template", msg.Template).Msg("Email send throttled past deadline")
		return nil
	}

	id, err := q.sender.Send(ctx, msg)
	metrics.RecordEmailSend(msg.Template, err)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Str("template", msg.Template).
			Str("to", logging.MaskEmail(msg.To)).
			Msg("Background email failed")
		return nil
	}
	logging.Ctx(ctx).Debug().Str("template", msg.Template).Str("message_id", id).Msg("Background email sent")
	return nil
}

// keepOpen stops the router from closing the shared pub/sub on shutdown, so
// a restarted Run can subscribe again.
type keepOpen struct {
	message.Subscriber
}

func (keepOpen) Close() error { return nil }
