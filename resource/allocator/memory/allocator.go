// allocator.go implements a heap-backed resource allocator with a byte budget.

// Package memory provides a resource.Allocator backed by the Go heap.
//
// It is used by the software backend and by tests; the budget makes it
// possible to reproduce allocation failures of a real accelerator.
package memory

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/xaionaro-go/avencbuf/logger"
	"github.com/xaionaro-go/avencbuf/pool"
	"github.com/xaionaro-go/avencbuf/resource"
	"github.com/xaionaro-go/xsync"
)

type Allocator struct {
	// Budget is the maximum amount of live bytes; zero means unlimited.
	Budget uint64

	locker   xsync.Mutex
	recycler *pool.Pool
	stats    Stats
}

var _ resource.Allocator = (*Allocator)(nil)

func NewAllocator(budget uint64) *Allocator {
	return &Allocator{
		Budget:   budget,
		recycler: pool.NewPool(),
	}
}

type Stats struct {
	Allocations uint64
	Frees       uint64
	LiveBytes   uint64
	PeakBytes   uint64
}

func (s Stats) String() string {
	return fmt.Sprintf(
		"allocations:%d frees:%d live:%s peak:%s",
		s.Allocations, s.Frees, humanize.IBytes(s.LiveBytes), humanize.IBytes(s.PeakBytes),
	)
}

type ErrBudgetExceeded struct {
	Requested uint64
	Live      uint64
	Budget    uint64
}

func (e ErrBudgetExceeded) Error() string {
	return fmt.Sprintf(
		"requested %s while %s of %s are in use",
		humanize.IBytes(e.Requested), humanize.IBytes(e.Live), humanize.IBytes(e.Budget),
	)
}

type Buffer struct {
	spec  resource.SizeSpec
	data  []byte
	freed bool
}

var _ resource.Resource = (*Buffer)(nil)

func (b *Buffer) Spec() resource.SizeSpec {
	return b.spec
}

// Bytes returns the memory of the buffer.
func (b *Buffer) Bytes() []byte {
	return b.data
}

func (b *Buffer) String() string {
	return b.spec.String()
}

func (a *Allocator) Allocate(
	ctx context.Context,
	spec resource.SizeSpec,
) (resource.Resource, error) {
	return xsync.DoA2R2(ctx, &a.locker, a.allocateLocked, ctx, spec)
}

func (a *Allocator) allocateLocked(
	ctx context.Context,
	spec resource.SizeSpec,
) (resource.Resource, error) {
	if spec.Size == 0 {
		return nil, fmt.Errorf("zero-sized resource %s", spec)
	}
	if a.Budget != 0 && a.stats.LiveBytes+spec.Size > a.Budget {
		return nil, ErrBudgetExceeded{
			Requested: spec.Size,
			Live:      a.stats.LiveBytes,
			Budget:    a.Budget,
		}
	}
	if a.recycler == nil {
		a.recycler = pool.NewPool()
	}
	buf := &Buffer{
		spec: spec,
		data: a.recycler.Get(ctx, spec.Size),
	}
	a.stats.Allocations++
	a.stats.LiveBytes += spec.Size
	a.stats.PeakBytes = max(a.stats.PeakBytes, a.stats.LiveBytes)
	logger.Tracef(ctx, "allocated %s; %s", spec, a.stats)
	return buf, nil
}

func (a *Allocator) Zero(
	ctx context.Context,
	res resource.Resource,
) error {
	buf, ok := res.(*Buffer)
	if !ok {
		return fmt.Errorf("resource %s of type %T was not allocated by %T", res, res, a)
	}
	clear(buf.data)
	return nil
}

func (a *Allocator) Free(
	ctx context.Context,
	res resource.Resource,
) error {
	return xsync.DoA2R1(ctx, &a.locker, a.freeLocked, ctx, res)
}

func (a *Allocator) freeLocked(
	ctx context.Context,
	res resource.Resource,
) error {
	buf, ok := res.(*Buffer)
	if !ok {
		return fmt.Errorf("resource %s of type %T was not allocated by %T", res, res, a)
	}
	if buf.freed {
		return fmt.Errorf("resource %s is already freed", res)
	}
	buf.freed = true
	a.recycler.Put(ctx, buf.data)
	buf.data = nil
	a.stats.Frees++
	a.stats.LiveBytes -= buf.spec.Size
	logger.Tracef(ctx, "freed %s; %s", buf.spec, a.stats)
	return nil
}

func (a *Allocator) Stats(ctx context.Context) Stats {
	return xsync.DoR1(xsync.WithNoLogging(ctx, true), &a.locker, func() Stats {
		return a.stats
	})
}
