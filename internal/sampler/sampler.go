// Package sampler compiles regular expressions into bounded random string
// generators.
//
// A Sampler walks the parsed syntax tree of its pattern and draws one random
// choice per node: an alternative, a rune from a class, a repetition count.
// Unbounded quantifiers (*, +, {n,}) repeat at most n+Bound times, where Bound
// is drawn once when the Sampler is compiled and never changes afterwards.
package sampler

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"regexp/syntax"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	DefaultMinRepeat = 1
	DefaultMaxRepeat = 100
)

// Runes drawn for '.' and preferred for wide classes such as [^a-z].
const (
	printableLo = 0x20
	printableHi = 0x7e
)

// Options configures sampler construction.
type Options struct {
	MinRepeat int
	MaxRepeat int
	// Rand is the random source the sampler draws from. A nil Rand gets a
	// freshly seeded source.
	Rand *rand.Rand
}

// DefaultOptions returns the default repetition range with a fresh random source.
func DefaultOptions() Options {
	return Options{
		MinRepeat: DefaultMinRepeat,
		MaxRepeat: DefaultMaxRepeat,
	}
}

// PatternCompileError reports a pattern the regex engine rejects.
type PatternCompileError struct {
	Source string
	Err    error
}

func (e *PatternCompileError) Error() string {
	return fmt.Sprintf("compile pattern %q: %v", e.Source, e.Err)
}

func (e *PatternCompileError) Unwrap() error {
	return e.Err
}

// Sampler generates random strings matching one pattern.
type Sampler struct {
	source string
	tree   *syntax.Regexp
	re     *regexp.Regexp
	bound  int
	rnd    *rand.Rand
}

// Compile parses source and returns a Sampler with its repetition bound fixed.
func Compile(source string, opts Options) (*Sampler, error) {
	if opts.MinRepeat <= 0 && opts.MaxRepeat <= 0 {
		opts.MinRepeat, opts.MaxRepeat = DefaultMinRepeat, DefaultMaxRepeat
	}
	if opts.MaxRepeat < opts.MinRepeat {
		opts.MaxRepeat = opts.MinRepeat
	}

	tree, err := syntax.Parse(source, syntax.Perl)
	if err != nil {
		return nil, &PatternCompileError{Source: source, Err: err}
	}
	re, err := regexp.Compile(source)
	if err != nil {
		return nil, &PatternCompileError{Source: source, Err: err}
	}

	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &Sampler{
		source: source,
		tree:   tree,
		re:     re,
		bound:  RepeatBound(rnd, opts.MinRepeat, opts.MaxRepeat),
		rnd:    rnd,
	}, nil
}

// RepeatBound draws floor(random * (hi-lo)) + lo.
func RepeatBound(r *rand.Rand, lo, hi int) int {
	return int(r.Float64()*float64(hi-lo)) + lo
}

// Source returns the pattern the sampler was compiled from.
func (s *Sampler) Source() string { return s.source }

// Bound returns the extra repetitions allowed for unbounded quantifiers.
func (s *Sampler) Bound() int { return s.bound }

// Matches reports whether v matches the sampler's pattern.
func (s *Sampler) Matches(v string) bool { return s.re.MatchString(v) }

// maxDraws caps the redraws Generate makes for patterns whose assertions the
// tree walk cannot honor, such as \b and \B.
const maxDraws = 64

// Generate draws one sample. Draws that do not match the pattern are
// discarded, up to maxDraws; the last draw is returned if none matched.
func (s *Sampler) Generate() string {
	var v string
	for range maxDraws {
		v = s.draw()
		if s.Matches(v) {
			break
		}
	}
	return v
}

func (s *Sampler) draw() string {
	var b strings.Builder
	s.gen(&b, s.tree)
	return b.String()
}

func (s *Sampler) gen(b *strings.Builder, re *syntax.Regexp) {
	switch re.Op {
	case syntax.OpLiteral:
		for _, r := range re.Rune {
			if re.Flags&syntax.FoldCase != 0 {
				r = s.fold(r)
			}
			b.WriteRune(r)
		}
	case syntax.OpCharClass:
		b.WriteRune(s.pickClass(re.Rune))
	case syntax.OpAnyChar, syntax.OpAnyCharNotNL:
		b.WriteRune(rune(printableLo + s.rnd.IntN(printableHi-printableLo+1)))
	case syntax.OpCapture:
		s.gen(b, re.Sub[0])
	case syntax.OpStar:
		s.repeat(b, re.Sub[0], 0, -1)
	case syntax.OpPlus:
		s.repeat(b, re.Sub[0], 1, -1)
	case syntax.OpQuest:
		s.repeat(b, re.Sub[0], 0, 1)
	case syntax.OpRepeat:
		s.repeat(b, re.Sub[0], re.Min, re.Max)
	case syntax.OpConcat:
		for _, sub := range re.Sub {
			s.gen(b, sub)
		}
	case syntax.OpAlternate:
		s.gen(b, re.Sub[s.rnd.IntN(len(re.Sub))])
	default:
		// Empty-width assertions, OpEmptyMatch and OpNoMatch emit nothing.
	}
}

// repeat emits sub between lo and hi times; hi < 0 means unbounded.
func (s *Sampler) repeat(b *strings.Builder, sub *syntax.Regexp, lo, hi int) {
	if hi < 0 {
		hi = lo + s.bound
	}
	n := lo
	if hi > lo {
		n += s.rnd.IntN(hi - lo + 1)
	}
	for range n {
		s.gen(b, sub)
	}
}

// fold picks a random member of r's case-folding orbit.
func (s *Sampler) fold(r rune) rune {
	orbit := []rune{r}
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		orbit = append(orbit, f)
	}
	return orbit[s.rnd.IntN(len(orbit))]
}

// pickClass draws a rune from a class given as [lo0, hi0, lo1, hi1, ...].
// Printable ASCII members are preferred when the class has any.
func (s *Sampler) pickClass(ranges []rune) rune {
	if len(ranges) == 0 {
		return utf8.RuneError
	}

	printable := make([]rune, 0, len(ranges))
	for i := 0; i+1 < len(ranges); i += 2 {
		lo, hi := max(ranges[i], printableLo), min(ranges[i+1], printableHi)
		if lo <= hi {
			printable = append(printable, lo, hi)
		}
	}
	if len(printable) > 0 {
		return s.pickRange(printable)
	}

	for range 8 {
		r := s.pickRange(ranges)
		if !isSurrogate(r) {
			return r
		}
	}
	return ranges[0]
}

func (s *Sampler) pickRange(ranges []rune) rune {
	total := 0
	for i := 0; i+1 < len(ranges); i += 2 {
		total += int(ranges[i+1]-ranges[i]) + 1
	}
	n := s.rnd.IntN(total)
	for i := 0; i+1 < len(ranges); i += 2 {
		size := int(ranges[i+1]-ranges[i]) + 1
		if n < size {
			return ranges[i] + rune(n)
		}
		n -= size
	}
	return ranges[0]
}

func isSurrogate(r rune) bool {
	return r >= 0xd800 && r <= 0xdfff
}
