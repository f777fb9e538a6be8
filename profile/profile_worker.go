package profile

import (
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"

	"github.com/google/pprof/profile"
)

// since we are assuming usage of this package from a single go routine, this channel only has
// one "producer", and one "consumer". its purpose is to guarantee the order of execution of
// adding / removing a profiling session and sampling events, while enabling the caller
// (netlist.Build) to sample the events asynchronously.
var chCommands = make(chan command, 100)
var onceInit sync.Once

type command struct {
	p      *Profile
	pc     []uintptr
	remove bool
}

func worker() {
	for c := range chCommands {
		if c.p != nil {
			if c.remove {
				for i := 0; i < len(sessions); i++ {
					if sessions[i] == c.p {
						sessions[i] = sessions[len(sessions)-1]
						sessions = sessions[:len(sessions)-1]
						break
					}
				}
				close(c.p.chDone)

				// decrement active sessions
				atomic.AddUint32(&activeSessions, ^uint32(0))
			} else {
				sessions = append(sessions, c.p)
			}
			continue
		}

		collectSample(c.pc)
	}
}

// collectSample must be called from the worker go routine
func collectSample(pc []uintptr) {
	// for each session we may have a distinct sample, since ids of functions and locations may mismatch
	samples := make([]*profile.Sample, len(sessions))
	for i := range samples {
		samples[i] = &profile.Sample{Value: []int64{1}} // for now, we just collect placed cell count
	}

	sawLinearizer := false
	frames := runtime.CallersFrames(pc)
	for {
		frame, more := frames.Next()

		if strings.HasPrefix(frame.Function, "testing.") || strings.HasPrefix(frame.Function, "runtime.") {
			// we reached the harness; previous frame was the outermost caller
			break
		}

		if isAnonymous(frame.Function) {
			continue
		}

		// filter internal plumbing of the linearizer and the node walks
		if filterBuilderPrivateFunc(frame.Function) || filterWalkPrivateFunc(frame.Function) {
			continue
		}

		if sawLinearizer {
			// the first frame above Build names the profile; the user
			// function requesting the netlist is the closest thing a
			// generator has to a circuit name
			name := shortName(frame.Function)
			for i := range sessions {
				sessions[i].onceSetName.Do(func() {
					sessions[i].pprof.Mapping = []*profile.Mapping{
						{ID: 1, File: name},
					}
				})
			}
			sawLinearizer = false
		}

		for i := range samples {
			samples[i].Location = append(samples[i].Location, sessions[i].getLocation(&frame))
		}

		if !more {
			break
		}
		if strings.HasSuffix(frame.Function, "netlist.Build") || strings.HasSuffix(frame.Function, "netlist.BuildTree") {
			sawLinearizer = true
		}
	}

	for i := range sessions {
		sessions[i].pprof.Sample = append(sessions[i].pprof.Sample, samples[i])
	}
}

// isAnonymous reports whether fn names a compiler generated closure,
// like Build.func1 or Each.func1.2.
func isAnonymous(fn string) bool {
	i := strings.LastIndex(fn, ".func")
	if i == -1 {
		return false
	}
	suffix := fn[i+len(".func"):]
	if suffix == "" {
		return false
	}
	for _, r := range suffix {
		if !unicode.IsDigit(r) && r != '.' {
			return false
		}
	}
	return true
}

func filterBuilderPrivateFunc(f string) bool {
	const builderPrefix = "github.com/consensys/pptrees/netlist.(*builder)."
	if strings.HasPrefix(f, builderPrefix) && len(f) > len(builderPrefix) {
		// filter the linearizer private APIs from the trace.
		c := []rune(f)[len(builderPrefix)]
		if unicode.IsLower(c) {
			return true
		}
	}
	return false
}

func filterWalkPrivateFunc(f string) bool {
	const nodePrefix = "github.com/consensys/pptrees/prefix.(*Node)."
	if strings.HasPrefix(f, nodePrefix) && len(f) > len(nodePrefix) {
		// filter the recursive node walk from the trace.
		c := []rune(f)[len(nodePrefix)]
		if unicode.IsLower(c) {
			return true
		}
	}
	return false
}

func shortName(fn string) string {
	fe := strings.Split(fn, "/")
	return fe[len(fe)-1]
}
