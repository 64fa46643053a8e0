package reserver

import (
	"context"
	"fmt"
	"time"

	"github.com/example/order-fulfillment/internal/email"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	// MaxAttempts is the fixed ceiling of upload attempts per message.
	MaxAttempts = 3

	KeyPrefix = "order-requests/"

	FailureSubject = "OrderItemsReserver - Order Request Upload Failed"
)

type State string

const (
	StateReceived     State = "Received"
	StateUploading    State = "Uploading"
	StateSucceeded    State = "Succeeded"
	StateRetryPending State = "RetryPending"
	StateEscalated    State = "Escalated"
)

// Terminal reports whether the message has been fully handled.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateEscalated
}

// Result describes how one invocation ended.
type Result struct {
	State    State
	Attempts int
	Key      string
	Err      error
}

// BlobUploader writes data under key, overwriting any existing blob.
type BlobUploader interface {
	Upload(ctx context.Context, key string, data []byte) error
}

// Escalator notifies a human about a message that could not be stored.
type Escalator interface {
	SendFailure(ctx context.Context, subject, body string) error
}

// Worker stores delivery order messages as blobs, retrying a bounded number
// of times and escalating when every attempt fails.
type Worker struct {
	uploader   BlobUploader
	escalator  Escalator
	retryDelay time.Duration
	logger     zerolog.Logger
	newKey     func() string
}

type Option func(*Worker)

// WithRetryDelay sets the pause between failed attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.retryDelay = d
		}
	}
}

// WithKeyFunc overrides blob key generation.
func WithKeyFunc(fn func() string) Option {
	return func(w *Worker) {
		w.newKey = fn
	}
}

func NewWorker(uploader BlobUploader, escalator Escalator, logger zerolog.Logger, opts ...Option) *Worker {
	w := &Worker{
		uploader:  uploader,
		escalator: escalator,
		logger:    logger.With().Str("component", "order-items-reserver").Logger(),
		newKey:    NewBlobKey,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// NewBlobKey returns a fresh "order-requests/<uuid>.json" key.
func NewBlobKey() string {
	return KeyPrefix + uuid.NewString() + ".json"
}

// Process uploads payload under a single key generated for this invocation.
func (w *Worker) Process(ctx context.Context, payload []byte) Result {
	res := Result{State: StateReceived, Key: w.newKey()}
	log := w.logger.With().Str("blob_key", res.Key).Logger()
	log.Debug().Int("bytes", len(payload)).Msg("order request received")

	var lastErr error
	for res.Attempts < MaxAttempts {
		if err := ctx.Err(); err != nil {
			res.Err = err
			return res
		}

		res.State = StateUploading
		res.Attempts++
		lastErr = w.uploader.Upload(ctx, res.Key, payload)
		if lastErr == nil {
			res.State = StateSucceeded
			log.Info().Int("attempt", res.Attempts).Msg("order request uploaded")
			return res
		}

		log.Error().Err(lastErr).Int("attempt", res.Attempts).Msg("order request upload failed")
		if err := ctx.Err(); err != nil {
			res.Err = err
			return res
		}
		if res.Attempts == MaxAttempts {
			break
		}

		res.State = StateRetryPending
		if err := w.wait(ctx); err != nil {
			res.Err = err
			return res
		}
	}

	failure := errors.WithStack(fmt.Errorf("upload %s failed after %d attempts: %w", res.Key, res.Attempts, lastErr))
	res.Err = failure
	res.State = StateEscalated
	w.escalate(ctx, log, failure)
	return res
}

// HandleMessage adapts Process to the queue consumer. Terminal outcomes
// acknowledge the message; a cancelled invocation leaves it for redelivery.
func (w *Worker) HandleMessage(ctx context.Context, key, value []byte) error {
	res := w.Process(ctx, value)
	if res.State.Terminal() {
		return nil
	}
	if res.Err != nil {
		return res.Err
	}
	return ctx.Err()
}

func (w *Worker) escalate(ctx context.Context, log zerolog.Logger, failure error) {
	if w.escalator == nil {
		log.Error().Msg("no escalator configured, upload failure not reported")
		return
	}
	if err := w.escalator.SendFailure(ctx, FailureSubject, email.BuildFailureBody(failure)); err != nil {
		log.Error().Err(err).Msg("failed to send upload failure notification")
		return
	}
	log.Warn().Msg("upload failure escalated")
}

func (w *Worker) wait(ctx context.Context) error {
	if w.retryDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(w.retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
