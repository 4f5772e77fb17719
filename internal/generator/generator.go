// Package generator draws samples from compiled patterns.
package generator

import (
	"errors"
	"fmt"

	"github.com/rcliao/regexgen/internal/model"
	"github.com/rcliao/regexgen/internal/patterns"
	"github.com/rcliao/regexgen/internal/sampler"
)

// ErrNegativeCount is returned for a negative sample count.
var ErrNegativeCount = errors.New("sample count must not be negative")

// Produce draws count samples from s and passes each to onSample, in index
// order. It stops at the first error onSample returns.
func Produce(s *sampler.Sampler, pattern string, count int, onSample func(model.Sample) error) error {
	if count < 0 {
		return ErrNegativeCount
	}
	for i := 0; i < count; i++ {
		if err := onSample(model.Sample{Pattern: pattern, Index: i, Value: s.Generate()}); err != nil {
			return err
		}
	}
	return nil
}

// Options configures a multi-pattern run.
type Options struct {
	Count   int
	Sampler sampler.Options
}

// Run produces opts.Count samples for every pattern of set, one pattern after
// another in declaration order. Each pattern gets a freshly compiled sampler.
func Run(set *patterns.Set, opts Options, onSample func(model.Sample) error) error {
	if opts.Count < 0 {
		return ErrNegativeCount
	}
	for _, p := range set.Patterns() {
		s, err := sampler.Compile(p.Source, opts.Sampler)
		if err != nil {
			return fmt.Errorf("pattern %q: %w", p.Name, err)
		}
		if err := Produce(s, p.Name, opts.Count, onSample); err != nil {
			return err
		}
	}
	return nil
}

// Validate compiles every pattern of set once and reports the first failure.
func Validate(set *patterns.Set) error {
	for _, p := range set.Patterns() {
		if _, err := sampler.Compile(p.Source, sampler.DefaultOptions()); err != nil {
			return fmt.Errorf("pattern %q: %w", p.Name, err)
		}
	}
	return nil
}
