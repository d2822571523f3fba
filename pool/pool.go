// pool.go implements recycling of fixed-size byte buffers.

// Package pool provides recycling of byte buffers keyed by their exact size.
package pool

import (
	"context"
	"sync"

	"github.com/xaionaro-go/xsync"
)

var ReuseMemory = true

// Pool recycles byte buffers. Buffers returned by Get have
// undefined content: the caller is responsible for clearing them.
type Pool struct {
	locker xsync.Mutex
	bySize map[uint64]*sync.Pool
}

func NewPool() *Pool {
	return &Pool{
		bySize: map[uint64]*sync.Pool{},
	}
}

func (p *Pool) Get(ctx context.Context, size uint64) []byte {
	sp := p.sizePool(ctx, size)
	return *sp.Get().(*[]byte)
}

func (p *Pool) Put(ctx context.Context, items ...[]byte) {
	if !ReuseMemory {
		return
	}
	for _, item := range items {
		if cap(item) == 0 {
			continue
		}
		item = item[:cap(item)]
		p.sizePool(ctx, uint64(len(item))).Put(&item)
	}
}

func (p *Pool) sizePool(ctx context.Context, size uint64) *sync.Pool {
	return xsync.DoR1(xsync.WithNoLogging(ctx, true), &p.locker, func() *sync.Pool {
		sp, ok := p.bySize[size]
		if ok {
			return sp
		}
		sp = &sync.Pool{
			New: func() any {
				buf := make([]byte, size)
				return &buf
			},
		}
		p.bySize[size] = sp
		return sp
	})
}
