package reserver

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	mu       sync.Mutex
	failures int
	err      error
	keys     []string
	blobs    map[string][]byte
	onUpload func()
}

func (f *fakeUploader) Upload(ctx context.Context, key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	if f.onUpload != nil {
		f.onUpload()
	}
	if f.failures != 0 {
		if f.failures > 0 {
			f.failures--
		}
		if f.err != nil {
			return f.err
		}
		return errors.New("storage unavailable")
	}
	if f.blobs == nil {
		f.blobs = make(map[string][]byte)
	}
	f.blobs[key] = append([]byte(nil), data...)
	return nil
}

type fakeEscalator struct {
	subjects []string
	bodies   []string
	err      error
}

func (f *fakeEscalator) SendFailure(ctx context.Context, subject, body string) error {
	f.subjects = append(f.subjects, subject)
	f.bodies = append(f.bodies, body)
	return f.err
}

func fixedKey() string { return "order-requests/fixed.json" }

func newTestWorker(up BlobUploader, esc Escalator, opts ...Option) *Worker {
	opts = append([]Option{WithKeyFunc(fixedKey)}, opts...)
	return NewWorker(up, esc, zerolog.Nop(), opts...)
}

var payload = []byte(`{"shipToAddress":{"street":"1 Main"},"orderItems":[],"finalPrice":"20"}`)

func TestWorker_Process_FirstAttemptSucceeds(t *testing.T) {
	up := &fakeUploader{}
	esc := &fakeEscalator{}

	res := newTestWorker(up, esc).Process(context.Background(), payload)

	assert.Equal(t, StateSucceeded, res.State)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, "order-requests/fixed.json", res.Key)
	assert.NoError(t, res.Err)
	assert.Equal(t, payload, up.blobs[res.Key])
	assert.Empty(t, esc.subjects)
}

func TestWorker_Process_TransientFailures(t *testing.T) {
	for _, failures := range []int{1, 2} {
		up := &fakeUploader{failures: failures}
		esc := &fakeEscalator{}

		res := newTestWorker(up, esc).Process(context.Background(), payload)

		assert.Equal(t, StateSucceeded, res.State)
		assert.Equal(t, failures+1, res.Attempts)
		assert.Len(t, up.keys, failures+1)
		for _, k := range up.keys {
			assert.Equal(t, res.Key, k, "every attempt must target the same key")
		}
		assert.Equal(t, payload, up.blobs[res.Key])
		assert.Empty(t, esc.subjects)
	}
}

func TestWorker_Process_EscalatesAfterMaxAttempts(t *testing.T) {
	up := &fakeUploader{failures: -1, err: errors.New("bucket gone")}
	esc := &fakeEscalator{}

	res := newTestWorker(up, esc).Process(context.Background(), payload)

	assert.Equal(t, StateEscalated, res.State)
	assert.Equal(t, MaxAttempts, res.Attempts)
	assert.Len(t, up.keys, MaxAttempts)
	require.Len(t, esc.subjects, 1)
	assert.Equal(t, FailureSubject, esc.subjects[0])
	assert.True(t, strings.HasPrefix(esc.bodies[0], res.Err.Error()+": "))
	assert.Contains(t, esc.bodies[0], "bucket gone")
	assert.Contains(t, esc.bodies[0], "reserver")
}

func TestWorker_Process_EscalationFailureIsNotFatal(t *testing.T) {
	up := &fakeUploader{failures: -1}
	esc := &fakeEscalator{err: errors.New("smtp down")}

	w := newTestWorker(up, esc)
	res := w.Process(context.Background(), payload)

	assert.Equal(t, StateEscalated, res.State)
	assert.Len(t, esc.subjects, 1)
	assert.NoError(t, w.HandleMessage(context.Background(), nil, payload))
}

func TestWorker_Process_Idempotent(t *testing.T) {
	up := &fakeUploader{}
	w := newTestWorker(up, &fakeEscalator{})

	first := w.Process(context.Background(), payload)
	second := w.Process(context.Background(), payload)

	assert.Equal(t, StateSucceeded, first.State)
	assert.Equal(t, StateSucceeded, second.State)
	assert.Len(t, up.blobs, 1)
	assert.Equal(t, payload, up.blobs[first.Key])
}

func TestWorker_Process_CancelledDuringRetryDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	up := &fakeUploader{failures: -1, onUpload: cancel}
	esc := &fakeEscalator{}

	w := newTestWorker(up, esc, WithRetryDelay(time.Second))
	res := w.Process(ctx, payload)

	assert.False(t, res.State.Terminal())
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Equal(t, 1, res.Attempts)
	assert.Empty(t, esc.subjects)
}

func TestWorker_Process_RetryDelay(t *testing.T) {
	up := &fakeUploader{failures: 1}

	start := time.Now()
	res := newTestWorker(up, &fakeEscalator{}, WithRetryDelay(20*time.Millisecond)).Process(context.Background(), payload)

	assert.Equal(t, StateSucceeded, res.State)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestWorker_HandleMessage(t *testing.T) {
	t.Run("success acknowledges", func(t *testing.T) {
		w := newTestWorker(&fakeUploader{}, &fakeEscalator{})
		assert.NoError(t, w.HandleMessage(context.Background(), []byte("1"), payload))
	})

	t.Run("escalated acknowledges", func(t *testing.T) {
		w := newTestWorker(&fakeUploader{failures: -1}, &fakeEscalator{})
		assert.NoError(t, w.HandleMessage(context.Background(), []byte("1"), payload))
	})

	t.Run("cancelled is redelivered", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		up := &fakeUploader{}
		w := newTestWorker(up, &fakeEscalator{})

		err := w.HandleMessage(ctx, []byte("1"), payload)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, up.keys)
	})
}

func TestNewBlobKey(t *testing.T) {
	a, b := NewBlobKey(), NewBlobKey()

	assert.True(t, strings.HasPrefix(a, KeyPrefix))
	assert.True(t, strings.HasSuffix(a, ".json"))
	assert.NotEqual(t, a, b)
	assert.Len(t, strings.TrimSuffix(strings.TrimPrefix(a, KeyPrefix), ".json"), 36)
}
