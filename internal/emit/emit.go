// Package emit turns generation requests into output files.
//
// A request is first expanded: selecting every pattern with SeparateFiles set
// becomes one request per pattern. Each request then writes either one file
// per format holding every sample (the aggregated layout) or one file per
// sample and format (OneSamplePerFile). Files live under
// <OutputDir>/<base>/ and are named after base, the sanitized selector or
// "All".
package emit

import (
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/rcliao/regexgen/internal/format"
	"github.com/rcliao/regexgen/internal/generator"
	"github.com/rcliao/regexgen/internal/model"
	"github.com/rcliao/regexgen/internal/patterns"
	"github.com/rcliao/regexgen/internal/sampler"
)

// Request is one generation request.
type Request struct {
	// Selector names a single pattern; empty selects every pattern.
	Selector         string
	Count            int
	Formats          []format.Format
	OutputDir        string
	SeparateFiles    bool
	OneSamplePerFile bool
	// Grouped nests aggregated JSON samples under their pattern key.
	Grouped bool
}

// Label returns the selector, or "All".
func (r Request) Label() string {
	if r.Selector == "" {
		return patterns.AllSelector
	}
	return r.Selector
}

// Layout returns the model layout name of the request.
func (r Request) Layout() string {
	if r.OneSamplePerFile {
		return model.LayoutPerSample
	}
	return model.LayoutAggregated
}

// FormatNames returns the request formats as strings.
func (r Request) FormatNames() []string {
	names := make([]string, len(r.formats()))
	for i, f := range r.formats() {
		names[i] = f.String()
	}
	return names
}

func (r Request) formats() []format.Format {
	if len(r.Formats) == 0 {
		return []format.Format{format.JSON}
	}
	return r.Formats
}

// Expand splits a request selecting every pattern with SeparateFiles set into
// one request per pattern, in declaration order, with SeparateFiles cleared.
// Any other request is returned as is.
func Expand(req Request, set *patterns.Set) []Request {
	if req.Selector != "" || !req.SeparateFiles {
		return []Request{req}
	}
	names := set.Names()
	out := make([]Request, 0, len(names))
	for _, name := range names {
		sub := req
		sub.Selector = name
		sub.SeparateFiles = false
		out = append(out, sub)
	}
	return out
}

// Result describes what one request wrote.
type Result struct {
	Request Request
	Files   []model.RunFile
	Samples int
	Bytes   int64
}

// Emitter runs requests against a pattern set.
type Emitter struct {
	set     *patterns.Set
	sink    Sink
	logger  *zap.Logger
	sampler sampler.Options
	notify  func(Request)
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithSink replaces the default FileSink.
func WithSink(s Sink) Option {
	return func(e *Emitter) { e.sink = s }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Emitter) { e.logger = l }
}

// WithSamplerOptions sets the repetition range and random source of every
// sampler the emitter compiles.
func WithSamplerOptions(o sampler.Options) Option {
	return func(e *Emitter) { e.sampler = o }
}

// WithNotify registers fn to be called with each request right before it runs.
func WithNotify(fn func(Request)) Option {
	return func(e *Emitter) { e.notify = fn }
}

// New returns an Emitter over set.
func New(set *patterns.Set, opts ...Option) *Emitter {
	e := &Emitter{
		set:     set,
		sink:    FileSink{},
		logger:  zap.NewNop(),
		sampler: sampler.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Generate expands req and runs the resulting requests one after another.
// Every selected pattern is compiled before anything is written. It stops at
// the first failure and returns the results completed so far.
func (e *Emitter) Generate(req Request) ([]Result, error) {
	if req.Count < 0 {
		return nil, generator.ErrNegativeCount
	}

	sel, err := e.set.Resolve(patterns.Query{Name: req.Selector})
	if err != nil {
		return nil, err
	}
	if err := generator.Validate(sel.Set); err != nil {
		return nil, err
	}
	if err := checkKeys(sel.Set); err != nil {
		return nil, err
	}

	var results []Result
	for _, sub := range Expand(req, e.set) {
		if e.notify != nil {
			e.notify(sub)
		}
		res, err := e.run(sub)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (e *Emitter) run(req Request) (Result, error) {
	sel, err := e.set.Resolve(patterns.Query{Name: req.Selector})
	if err != nil {
		return Result{}, err
	}
	base := format.SanitizeKey(sel.Label())
	dir := filepath.Join(req.OutputDir, base)
	if err := e.sink.MkdirAll(dir); err != nil {
		return Result{}, fmt.Errorf("create output dir: %w", err)
	}

	e.logger.Debug("running request",
		zap.String("selector", req.Label()),
		zap.Int("count", req.Count),
		zap.Strings("formats", req.FormatNames()),
		zap.String("layout", req.Layout()),
		zap.String("dir", dir))

	res := Result{Request: req}
	opts := generator.Options{Count: req.Count, Sampler: e.sampler}
	basePath := filepath.Join(dir, base)
	if req.OneSamplePerFile {
		err = e.writePerSample(sel.Set, opts, req.formats(), basePath, &res)
	} else {
		err = e.writeAggregated(sel.Set, opts, req, basePath, &res)
	}
	if err != nil {
		return res, err
	}

	e.logger.Info("generated samples",
		zap.String("selector", req.Label()),
		zap.Int("samples", res.Samples),
		zap.Int("files", len(res.Files)),
		zap.Int64("bytes", res.Bytes))
	return res, nil
}

func (e *Emitter) writeAggregated(set *patterns.Set, opts generator.Options, req Request, basePath string, res *Result) (err error) {
	style := format.Array
	if req.Grouped {
		style = format.Grouped
	}

	var streams []*stream
	defer func() {
		for _, s := range streams {
			if cerr := s.close(); cerr != nil && err == nil {
				err = fmt.Errorf("close %s: %w", s.path, cerr)
			}
		}
	}()

	for _, f := range req.formats() {
		s, err := openStream(e.sink, basePath+f.Ext(), f)
		if err != nil {
			return fmt.Errorf("open output: %w", err)
		}
		streams = append(streams, s)
		head, _ := format.Frame(f, style)
		if err := s.write(head); err != nil {
			return fmt.Errorf("write %s: %w", s.path, err)
		}
		e.logger.Debug("opened stream", zap.String("path", s.path), zap.Stringer("format", f))
	}

	seq := 0
	err = generator.Run(set, opts, func(sm model.Sample) error {
		pos := format.Position{Index: sm.Index, Total: opts.Count, Seq: seq}
		seq++
		for _, s := range streams {
			frag, err := serialize(s.format, style, sm, pos)
			if err != nil {
				return err
			}
			if err := s.write(frag); err != nil {
				return fmt.Errorf("write %s: %w", s.path, err)
			}
		}
		return nil
	})
	res.Samples = seq
	if err != nil {
		return err
	}

	var errs []error
	for _, s := range streams {
		_, tail := format.Frame(s.format, style)
		if err := s.write(tail); err != nil {
			errs = append(errs, fmt.Errorf("write %s: %w", s.path, err))
			continue
		}
		if err := s.close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", s.path, err))
			continue
		}
		res.Files = append(res.Files, model.RunFile{Path: s.path, Format: s.format.String(), Bytes: s.bytes})
		res.Bytes += s.bytes
	}
	return errors.Join(errs...)
}

func (e *Emitter) writePerSample(set *patterns.Set, opts generator.Options, formats []format.Format, basePath string, res *Result) error {
	seq := 0
	return generator.Run(set, opts, func(sm model.Sample) error {
		for _, f := range formats {
			frag, err := serialize(f, format.Unit, sm, format.Position{Index: sm.Index, Total: opts.Count, Seq: seq})
			if err != nil {
				return err
			}
			file, err := e.writeUnit(fmt.Sprintf("%s %d%s", basePath, seq, f.Ext()), f, frag)
			if err != nil {
				return err
			}
			res.Files = append(res.Files, file)
			res.Bytes += file.Bytes
		}
		seq++
		res.Samples = seq
		return nil
	})
}

// writeUnit writes one self-contained file.
func (e *Emitter) writeUnit(path string, f format.Format, text string) (model.RunFile, error) {
	s, err := openStream(e.sink, path, f)
	if err != nil {
		return model.RunFile{}, fmt.Errorf("open output: %w", err)
	}
	werr := s.write(text)
	cerr := s.close()
	if werr != nil {
		return model.RunFile{}, fmt.Errorf("write %s: %w", path, werr)
	}
	if cerr != nil {
		return model.RunFile{}, fmt.Errorf("close %s: %w", path, cerr)
	}
	return model.RunFile{Path: path, Format: f.String(), Bytes: s.bytes}, nil
}

// KeyCollisionError reports two pattern names that sanitize to the same key.
type KeyCollisionError struct {
	Key   string
	Names [2]string
}

func (e *KeyCollisionError) Error() string {
	return fmt.Sprintf("patterns %q and %q both write key %q", e.Names[0], e.Names[1], e.Key)
}

// checkKeys rejects sets where two names sanitize to the same output key.
func checkKeys(set *patterns.Set) error {
	seen := make(map[string]string, set.Len())
	for _, name := range set.Names() {
		key := format.SanitizeKey(name)
		if prev, ok := seen[key]; ok {
			return &KeyCollisionError{Key: key, Names: [2]string{prev, name}}
		}
		seen[key] = name
	}
	return nil
}

func serialize(f format.Format, style format.Style, sm model.Sample, pos format.Position) (string, error) {
	frag, err := format.Serialize(f, style, sm.Pattern, sm.Value, pos)
	var ue *format.UnsupportedFormatError
	if errors.As(err, &ue) {
		return format.Serialize(format.JSON, style, sm.Pattern, sm.Value, pos)
	}
	return frag, err
}
