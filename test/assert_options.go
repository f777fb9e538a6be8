package test

import (
	"fmt"
	"testing"
)

// TestingOption defines option for altering the behavior of Assert methods.
// See the descriptions of functions returning instances of this type for
// particular options.
type TestingOption func(*testingConfig) error

type testingConfig struct {
	samples           int
	seed              int64
	skipSerialization bool
}

// default options
func (assert *Assert) options(opts ...TestingOption) testingConfig {
	opt := testingConfig{samples: 200, seed: 42}
	if testing.Short() {
		opt.samples = 50
	}

	// apply user provided options.
	for _, option := range opts {
		err := option(&opt)
		assert.NoError(err, "parsing TestingOption")
	}

	return opt
}

// WithSamples sets how many random input vectors the equivalence helpers draw
// when the input space is too large to enumerate.
func WithSamples(n int) TestingOption {
	return func(opt *testingConfig) error {
		if n < 1 {
			return fmt.Errorf("need at least one sample, got %d", n)
		}
		opt.samples = n
		return nil
	}
}

// WithSeed fixes the seed of the sampling generator.
func WithSeed(seed int64) TestingOption {
	return func(opt *testingConfig) error {
		opt.seed = seed
		return nil
	}
}

// NoSerializationChecks is a testing option which disables the serialization
// round trip that CircuitComputes runs after the semantic checks.
func NoSerializationChecks() TestingOption {
	return func(opt *testingConfig) error {
		opt.skipSerialization = true
		return nil
	}
}
