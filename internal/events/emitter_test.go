package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryEventEmitter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		err := emitter.EmitEvent(context.Background(), NewParameterEvent(ParameterCreated, "A"))
		assert.NoError(t, err)
	})

	t.Run("every handler receives the event", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		first, second := &recordingHandler{}, &recordingHandler{}
		emitter.RegisterHandler(first)
		emitter.RegisterHandler(second)

		event := NewParameterEvent(ParameterUpdated, "A")
		assert.NoError(t, emitter.EmitEvent(context.Background(), event))

		assert.Equal(t, []*ParameterEvent{event}, first.events)
		assert.Equal(t, []*ParameterEvent{event}, second.events)
	})

	t.Run("failing handler does not stop delivery", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		failing := &recordingHandler{err: errors.New("handler error")}
		alsoFailing := &recordingHandler{err: errors.New("second error")}
		ok := &recordingHandler{}
		emitter.RegisterHandler(failing)
		emitter.RegisterHandler(alsoFailing)
		emitter.RegisterHandler(ok)

		err := emitter.EmitEvent(context.Background(), NewParameterEvent(ParameterDeleted, "A"))
		assert.ErrorIs(t, err, failing.err)
		assert.ErrorIs(t, err, alsoFailing.err)
		assert.Len(t, failing.events, 1)
		assert.Len(t, alsoFailing.events, 1)
		assert.Len(t, ok.events, 1)
	})

	t.Run("nil logger", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(nil)
		assert.NoError(t, emitter.EmitEvent(context.Background(), NewParameterEvent(KeyRotated, "")))
	})

	t.Run("concurrent register and emit", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				emitter.RegisterHandler(HandlerFunc(func(context.Context, *ParameterEvent) error { return nil }))
			}()
			go func() {
				defer wg.Done()
				_ = emitter.EmitEvent(context.Background(), NewParameterEvent(ParameterUpdated, "A"))
			}()
		}
		wg.Wait()
	})
}
