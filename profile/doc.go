// Package profile provides optional runtime profiling through
// [github.com/pkg/profile].
//
// Profiling is compiled in only with the pprof build tag:
//
//	go build -tags pprof -o petuh .
//	petuh --pprof-mode=cpu run main.petuh
//
// Without the tag, [Modes] is empty and [Profiler.Start] returns a no-op
// stopper. Profiles are written to the configured directory with names
// matching the mode (cpu.pprof, mem.pprof, ...) and can be inspected with
// go tool pprof.
package profile

// Tag is the build tag required to enable profiling.
const Tag = `pprof`
