//go:build !debug

package debug

// Debug controls whether costly invariant checks and verbose stack
// reporting are enabled. It is false unless built with -tags=debug.
const Debug = false
