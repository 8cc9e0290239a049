package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/smsrates/pricefeed/internal/mailbox"
	"github.com/smsrates/pricefeed/internal/model"
)

type countingTemplates struct {
	calls atomic.Int32
	err   error
}

func (c *countingTemplates) ListEnabled(ctx context.Context) ([]model.ParsingTemplate, error) {
	c.calls.Add(1)
	return nil, c.err
}

func newTestScheduler(templates TemplateSource, interval time.Duration) *Scheduler {
	ingest := NewIngestService(templates, &fakeFetcher{msgs: []mailbox.Message{}}, &fakeResolver{}, &fakeWriter{}, nil)
	return NewScheduler(ingest, interval, 10)
}

func TestScheduler_RunsImmediatelyAndStopsOnCancel(t *testing.T) {
	templates := &countingTemplates{}
	s := newTestScheduler(templates, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return templates.calls.Load() == 1 },
		time.Second, 10*time.Millisecond, "first cycle starts without waiting for the interval")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on cancellation")
	}
}

func TestScheduler_CycleFailureDoesNotKillLoop(t *testing.T) {
	templates := &countingTemplates{err: errors.New("store unreachable")}
	s := newTestScheduler(templates, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return templates.calls.Load() >= 3 },
		time.Second, 5*time.Millisecond, "failed cycles are swallowed and the loop keeps scheduling")

	cancel()
	<-done
}
