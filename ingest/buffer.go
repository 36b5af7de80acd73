// Package ingest buffers the raw motion samples and flags a scrollview
// receives between two polls. It is the only part of scrollcore built to
// tolerate concurrent producers: platform event callbacks may run on a
// different goroutine than the one that later polls the scrollview, so long as
// polls themselves are externally serialized per §5.
package ingest

import (
	"sync/atomic"
	"time"

	"github.com/kinetex/scrollcore/constants"
)

// Sample is one raw delta event, summed from whichever axes the device
// reported in a single call, carrying its own arrival timestamp so the
// controller can advance physics to it in order.
type Sample struct {
	Time time.Time
	DX   float64
	DY   float64
}

// Batch is the result of draining a Buffer: the ordered samples received
// since the last drain, plus which of interrupt/release (if either)
// should be applied after them.
type Batch struct {
	Samples   []Sample
	Interrupt bool
	Release   bool
}

// Buffer is a lock-free MPSC ring of pending Samples, modeled on the
// published-flag ring buffer used for game events in the teacher: Push
// is safe for multiple concurrent producers via CAS on the tail index,
// Drain is single-consumer (the poller) and checks the published flag
// before trusting a slot. Overflowing the ring silently discards the
// oldest unconsumed sample, matching the teacher's overflow policy.
type Buffer struct {
	samples   [constants.IngestQueueSize]Sample
	published [constants.IngestQueueSize]atomic.Bool
	head      atomic.Uint64
	tail      atomic.Uint64

	interrupt atomic.Bool
	release   atomic.Bool
}

// New returns an empty Buffer.
func New() *Buffer {
	return &Buffer{}
}

// AddDelta enqueues a combined x/y delta event.
func (b *Buffer) AddDelta(t time.Time, dx, dy float64) {
	b.push(Sample{Time: t, DX: dx, DY: dy})
}

// AddDeltaX enqueues an x-only delta event.
func (b *Buffer) AddDeltaX(t time.Time, dx float64) {
	b.push(Sample{Time: t, DX: dx})
}

// AddDeltaY enqueues a y-only delta event.
func (b *Buffer) AddDeltaY(t time.Time, dy float64) {
	b.push(Sample{Time: t, DY: dy})
}

func (b *Buffer) push(s Sample) {
	for {
		currentTail := b.tail.Load()
		nextTail := currentTail + 1

		if b.tail.CompareAndSwap(currentTail, nextTail) {
			idx := currentTail % constants.IngestQueueSize
			b.samples[idx] = s
			b.published[idx].Store(true)

			currentHead := b.head.Load()
			if nextTail-currentHead > constants.IngestQueueSize {
				b.head.CompareAndSwap(currentHead, nextTail-constants.IngestQueueSize)
			}
			return
		}
	}
}

// Interrupt marks that the user has re-engaged the surface: idempotent
// within a window, and takes priority over a Release set in the same
// window (§4.2).
func (b *Buffer) Interrupt() {
	b.interrupt.Store(true)
}

// Release marks that the current gesture's last sample has been sent and
// kinetic motion should begin. Idempotent within a window.
func (b *Buffer) Release() {
	b.release.Store(true)
}

// Drain returns every sample enqueued since the last Drain, in arrival
// order, along with the resolved interrupt/release flags, and clears all
// of it. If both Interrupt and Release were set in the same window,
// Interrupt wins and Release is reported false, per §4.2.
func (b *Buffer) Drain() Batch {
	interrupt := b.interrupt.Swap(false)
	release := b.release.Swap(false)
	if interrupt {
		release = false
	}

	for {
		currentHead := b.head.Load()
		currentTail := b.tail.Load()

		if currentTail == currentHead {
			return Batch{Interrupt: interrupt, Release: release}
		}

		count := currentTail - currentHead
		if count > constants.IngestQueueSize {
			count = constants.IngestQueueSize
			currentHead = currentTail - constants.IngestQueueSize
		}

		result := make([]Sample, 0, count)
		for i := uint64(0); i < count; i++ {
			idx := (currentHead + i) % constants.IngestQueueSize
			if !b.published[idx].Load() {
				break
			}
			result = append(result, b.samples[idx])
			b.published[idx].Store(false)
		}

		newHead := currentHead + uint64(len(result))
		if b.head.CompareAndSwap(currentHead, newHead) {
			return Batch{Samples: result, Interrupt: interrupt, Release: release}
		}
	}
}
