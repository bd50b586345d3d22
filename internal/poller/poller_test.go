package poller

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdslide/mdslide/internal/render"
)

// countingPollable finishes (Done) once Poll has been called doneAfter times.
type countingPollable struct {
	calls     int32
	doneAfter int32
}

func (c *countingPollable) Poll() render.PollResult {
	n := atomic.AddInt32(&c.calls, 1)
	if n >= c.doneAfter {
		return render.PollResult{Done: true, NeedsRedraw: true}
	}
	return render.PollResult{NeedsRedraw: true}
}

func waitForEffect(t *testing.T, p *Poller) Effect {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if e, ok := p.NextEffect(); ok {
			return e
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timed out waiting for poller effect")
	return Effect{}
}

func TestPollerReportsDoneImmediately(t *testing.T) {
	p := Launch()
	defer p.Stop()

	p.Poll(&countingPollable{doneAfter: 1}, 3)

	e := waitForEffect(t, p)
	assert.Equal(t, EffectRefreshSlide, e.Kind)
	assert.Equal(t, 3, e.SlideIndex)
}

func TestPollerKeepsPollingUntilDone(t *testing.T) {
	p := Launch()
	defer p.Stop()

	p.Poll(&countingPollable{doneAfter: 3}, 1)

	e := waitForEffect(t, p)
	assert.Equal(t, 1, e.SlideIndex)
}

func TestPollerResetDiscardsPendingWork(t *testing.T) {
	p := Launch()
	defer p.Stop()

	p.Poll(&countingPollable{doneAfter: 100}, 5)
	p.Reset()

	_, ok := p.NextEffect()
	require.False(t, ok)
}
