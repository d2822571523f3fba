//go:build linux
// +build linux

// allocator_linux.go implements a resource allocator on anonymous memory mappings.

// Package mmap provides a resource.Allocator that places every resource in
// its own anonymous memory mapping, so freed resources are returned to the OS
// immediately and never outlive their slot.
package mmap

import (
	"context"
	"fmt"
	"os"

	"github.com/xaionaro-go/avencbuf/logger"
	"github.com/xaionaro-go/avencbuf/resource"
	"golang.org/x/sys/unix"
)

type Allocator struct{}

var _ resource.Allocator = (*Allocator)(nil)

func NewAllocator() *Allocator {
	return &Allocator{}
}

type Mapping struct {
	spec resource.SizeSpec
	data []byte
}

var _ resource.Resource = (*Mapping)(nil)

func (m *Mapping) Spec() resource.SizeSpec {
	return m.spec
}

func (m *Mapping) Bytes() []byte {
	return m.data
}

func (m *Mapping) String() string {
	return m.spec.String()
}

func (a *Allocator) Allocate(
	ctx context.Context,
	spec resource.SizeSpec,
) (resource.Resource, error) {
	if spec.Size == 0 {
		return nil, fmt.Errorf("zero-sized resource %s", spec)
	}
	length := resource.AlignUp(spec.Size, uint64(os.Getpagesize()))
	data, err := unix.Mmap(-1, 0, int(length), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("unable to mmap %d bytes: %w", length, err)
	}
	logger.Tracef(ctx, "mapped %s", spec)
	return &Mapping{
		spec: spec,
		data: data[:spec.Size],
	}, nil
}

// Zero clears the mapping. Fresh anonymous mappings are already zeroed by
// the kernel, but the allocator contract does not depend on that.
func (a *Allocator) Zero(
	ctx context.Context,
	res resource.Resource,
) error {
	m, ok := res.(*Mapping)
	if !ok {
		return fmt.Errorf("resource %s of type %T was not allocated by %T", res, res, a)
	}
	clear(m.data)
	return nil
}

func (a *Allocator) Free(
	ctx context.Context,
	res resource.Resource,
) error {
	m, ok := res.(*Mapping)
	if !ok {
		return fmt.Errorf("resource %s of type %T was not allocated by %T", res, res, a)
	}
	if m.data == nil {
		return fmt.Errorf("resource %s is already unmapped", res)
	}
	if err := unix.Munmap(m.data[:cap(m.data)]); err != nil {
		return fmt.Errorf("unable to munmap %s: %w", m.spec, err)
	}
	m.data = nil
	logger.Tracef(ctx, "unmapped %s", m.spec)
	return nil
}
