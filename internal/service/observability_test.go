package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/nodestore/internal/repository"
	"github.com/stretchr/testify/assert"
)

func TestLogUseCaseObserver_Levels(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogUseCaseObserver(&buf)
	ctx := context.Background()

	obs.ObserveUseCase(ctx, UseCaseEvent{
		Name:     "create-node",
		TraceID:  "trace-1",
		Duration: 3 * time.Millisecond,
		Success:  true,
		Fields:   map[string]any{"id": int64(7)},
	})
	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "use_case=create-node")
	assert.Contains(t, out, "trace_id=trace-1")
	assert.Contains(t, out, "id=7")

	buf.Reset()
	obs.ObserveUseCase(ctx, UseCaseEvent{
		Name: "update-node",
		Err:  &repository.Error{Kind: repository.KindOptimisticLock, Op: "update node"},
	})
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "code=OPTIMISTIC_LOCK_ERROR")

	buf.Reset()
	obs.ObserveUseCase(ctx, UseCaseEvent{Name: "get-node", Err: errors.New("disk gone")})
	assert.Contains(t, buf.String(), "level=ERROR")
}

func TestUseCaseObserverOrNoop(t *testing.T) {
	assert.IsType(t, NoopUseCaseObserver{}, useCaseObserverOrNoop(nil))
	assert.IsType(t, NoopUseCaseObserver{}, NewLogUseCaseObserver(nil))
	assert.IsType(t, NoopUseCaseObserver{}, NewSlogUseCaseObserver(nil))

	rec := &recordingObserver{}
	assert.Same(t, rec, useCaseObserverOrNoop([]UseCaseObserver{nil, rec}))
}
