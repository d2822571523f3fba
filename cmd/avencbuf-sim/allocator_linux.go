//go:build linux
// +build linux

package main

import (
	"github.com/xaionaro-go/avencbuf/resource"
	"github.com/xaionaro-go/avencbuf/resource/allocator/mmap"
)

func newMmapAllocator() (resource.Allocator, error) {
	return mmap.NewAllocator(), nil
}
