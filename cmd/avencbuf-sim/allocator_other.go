//go:build !linux
// +build !linux

package main

import (
	"fmt"
	"runtime"

	"github.com/xaionaro-go/avencbuf/resource"
)

func newMmapAllocator() (resource.Allocator, error) {
	return nil, fmt.Errorf("the mmap allocator is not supported on %s", runtime.GOOS)
}
