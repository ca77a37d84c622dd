// Package profile provides optional runtime profiling backed by
// [github.com/pkg/profile].
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof .
//	xosc --pprof-mode=cpu resolve scenario.xosc
//
// Without the tag every [Config] starts a no-op profiler and [Modes] is
// empty.
//
// Supported modes are allocs, block, clock, cpu, goroutine, heap, mem,
// mutex, thread and trace. Profiles are written below the directory given
// with [WithPath].
package profile

// Tag names the profile output subdirectory under the cache directory.
const Tag = "pprof"
