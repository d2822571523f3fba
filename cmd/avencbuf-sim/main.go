package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/avencbuf"
	"github.com/xaionaro-go/avencbuf/hwsync"
	"github.com/xaionaro-go/avencbuf/resource"
	"github.com/xaionaro-go/avencbuf/resource/allocator/memory"
	"github.com/xaionaro-go/avencbuf/types"
	avastiav "github.com/xaionaro-go/avencbuf/types/astiav"
	"github.com/xaionaro-go/observability"
	"gopkg.in/yaml.v3"
)

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "syntax: %s [flags]\n", os.Args[0])
		pflag.PrintDefaults()
	}

	loggerLevel := logger.LevelWarning
	pflag.Var(&loggerLevel, "log-level", "Log level")
	netPprofAddr := pflag.String("net-pprof-listen-addr", "", "an address to listen for incoming net/pprof connections")
	configPath := pflag.String("config", "", "path to a YAML config file")
	gopPattern := pflag.String("gop", "IPbbPbbP", "GOP pattern; upper case letters are reference frames, 'I' also resets the references")
	frameCount := pflag.Int("frames", 32, "amount of frames to encode")
	maxRefs := pflag.Int("max-refs", 4, "amount of reference frames to keep")
	latency := pflag.Duration("latency", 2*time.Millisecond, "simulated hardware latency of a frame")
	resolution := pflag.String("resolution", "", "picture resolution, e.g. 1920x1080")
	pixelFormat := pflag.String("pixel-format", "", "libav pixel format of the pictures, e.g. nv12 or p010le; defines the chroma format and the bit depth")
	resizeAt := pflag.Int("resize-at", -1, "the frame number to change the resolution at")
	resizeTo := pflag.String("resize-to", "1280x720", "the resolution to change to")
	allocatorName := pflag.String("allocator", "memory", "resource allocator: memory or mmap")
	memoryBudget := pflag.Uint64("memory-budget", 0, "the limit of the memory allocator in bytes, zero is unlimited")
	pflag.Parse()

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	ctx, cancelFn := context.WithCancel(ctx)
	defer cancelFn()
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	if *netPprofAddr != "" {
		observability.Go(ctx, func(ctx context.Context) { l.Error(http.ListenAndServe(*netPprofAddr, nil)) })
	}

	cfg := avencbuf.DefaultConfig()
	if *configPath != "" {
		b, err := os.ReadFile(*configPath)
		if err != nil {
			l.Fatal(err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			l.Fatalf("unable to parse '%s': %v", *configPath, err)
		}
	}
	if *resolution != "" {
		if err := cfg.Geometry.Resolution.Parse(*resolution); err != nil {
			l.Fatal(err)
		}
	}
	if *pixelFormat != "" {
		pixFmt, err := avastiav.ParsePixelFormat(*pixelFormat)
		if err != nil {
			l.Fatal(err)
		}
		res := cfg.Geometry.Resolution
		cfg.Geometry, err = avastiav.GeometryFromPixelFormat(int(res.Width), int(res.Height), pixFmt)
		if err != nil {
			l.Fatal(err)
		}
	}
	var resizeResolution types.Resolution
	if *resizeAt >= 0 {
		if err := resizeResolution.Parse(*resizeTo); err != nil {
			l.Fatal(err)
		}
	}
	gop, err := parseGOP(*gopPattern)
	if err != nil {
		l.Fatal(err)
	}

	var allocator resource.Allocator
	switch *allocatorName {
	case "memory":
		allocator = memory.NewAllocator(*memoryBudget)
	case "mmap":
		allocator, err = newMmapAllocator()
		if err != nil {
			l.Fatal(err)
		}
	default:
		l.Fatalf("unknown allocator '%s'", *allocatorName)
	}

	sim, err := hwsync.NewSimulator(ctx, cfg.TrackedBuffers.NumSlots(), cfg.TrackedBuffers.NonRefCapacity, *latency)
	if err != nil {
		l.Fatal(err)
	}
	defer sim.Close(ctx)

	session, err := avencbuf.NewSession(ctx, cfg, allocator, sim)
	if err != nil {
		l.Fatal(err)
	}
	defer session.Close(ctx)

	enc := newEncoder(session, sim, gop, *maxRefs)
	for frameNum := 0; frameNum < *frameCount; frameNum++ {
		if frameNum == *resizeAt {
			geometry := cfg.Geometry
			geometry.Resolution = resizeResolution
			if err := session.SetGeometry(ctx, geometry); err != nil {
				l.Fatal(err)
			}
			fmt.Printf("resolution changed to %s: %s\n", resizeResolution, session.Stats(ctx))
			enc.resetReferences()
		}
		line, err := enc.encodeFrame(ctx, frameNum)
		if err != nil {
			l.Fatal(err)
		}
		fmt.Println(line)
	}

	fmt.Printf("slots: %s\n", session.Stats(ctx))
	if a, ok := allocator.(*memory.Allocator); ok {
		fmt.Printf("allocator: %s\n", a.Stats(ctx))
	}
}
