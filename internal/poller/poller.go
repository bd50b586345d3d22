// Package poller runs the background goroutine that drives every
// in-progress snippet's render.Pollable on a fixed cadence, independently
// of the render/presenter loop, and reports back which slide needs a
// redraw. Grounded on
// _examples/original_source/src/presentation/poller.rs, translated from
// its sender/receiver-channel worker thread into a goroutine plus two Go
// channels.
package poller

import (
	"time"

	"github.com/mdslide/mdslide/internal/render"
)

const pollInterval = 25 * time.Millisecond

// Effect is one outcome surfaced to the presenter loop.
type Effect struct {
	Kind       EffectKind
	SlideIndex int
}

// EffectKind tags which Effect variant is populated.
type EffectKind int

const (
	EffectRefreshSlide EffectKind = iota
)

// entry pairs one pollable with the slide index it belongs to, mirroring
// the original's `pollables: Vec<(Box<dyn Pollable>, usize)>`.
type entry struct {
	pollable   render.Pollable
	slideIndex int
}

// Poller owns the worker goroutine's command and effect channels.
type Poller struct {
	commands chan command
	effects  chan Effect
}

type command struct {
	reset    bool
	pollable render.Pollable
	slide    int
}

// Launch starts the worker goroutine and returns a handle to it. The
// goroutine runs until Stop is called.
func Launch() *Poller {
	p := &Poller{
		commands: make(chan command, 16),
		effects:  make(chan Effect, 16),
	}
	go p.run()
	return p
}

// Poll registers a pollable newly introduced by a slide (e.g. a freshly
// started snippet execution), to be driven alongside every other
// in-flight pollable from here on.
func (p *Poller) Poll(pollable render.Pollable, slideIndex int) {
	p.commands <- command{pollable: pollable, slide: slideIndex}
}

// Reset discards every tracked pollable, used when the presenter loads or
// reloads a presentation and in-flight async output no longer has anywhere
// valid to land.
func (p *Poller) Reset() {
	p.commands <- command{reset: true}
}

// NextEffect returns the next pending effect without blocking, or false if
// none is available yet.
func (p *Poller) NextEffect() (Effect, bool) {
	select {
	case e := <-p.effects:
		return e, true
	default:
		return Effect{}, false
	}
}

// Stop closes the command channel, ending the worker goroutine.
func (p *Poller) Stop() {
	close(p.commands)
}

func (p *Poller) run() {
	var pollables []entry

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case cmd, ok := <-p.commands:
			if !ok {
				return
			}
			if cmd.reset {
				pollables = nil
				continue
			}
			// Poll once immediately: a freshly added pollable shouldn't
			// wait a full tick before its first check, matching the
			// original's "poll and only insert if still running" rule.
			result := cmd.pollable.Poll()
			if result.Done {
				p.send(Effect{Kind: EffectRefreshSlide, SlideIndex: cmd.slide})
				continue
			}
			pollables = append(pollables, entry{pollable: cmd.pollable, slideIndex: cmd.slide})

		case <-ticker.C:
			pollables = p.pollAll(pollables)
		}
	}
}

func (p *Poller) pollAll(pollables []entry) []entry {
	kept := pollables[:0]
	for _, e := range pollables {
		result := e.pollable.Poll()
		if result.NeedsRedraw {
			p.send(Effect{Kind: EffectRefreshSlide, SlideIndex: e.slideIndex})
		}
		if !result.Done {
			kept = append(kept, e)
		}
	}
	return kept
}

func (p *Poller) send(e Effect) {
	select {
	case p.effects <- e:
	default:
		// effects channel is generously buffered; a full buffer means the
		// presenter loop has fallen far behind and a dropped redraw
		// notification is harmless since the next tick will resend it.
	}
}
