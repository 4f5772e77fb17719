package cli

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/regexgen/internal/emit"
	"github.com/rcliao/regexgen/internal/format"
	"github.com/rcliao/regexgen/internal/patterns"
	"github.com/rcliao/regexgen/internal/sampler"
	"github.com/rcliao/regexgen/internal/store"
)

var (
	countStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	selectorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	formatStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

func addGenerateFlags(cmd *cobra.Command, a *app) {
	f := cmd.Flags()
	f.StringP("selector", "s", "", `Select a pattern by name ("All" selects every pattern)`)
	f.IntP("index", "i", 0, "Select a pattern by index")
	f.IntP("count", "c", 10, "Number of samples per pattern")
	f.StringP("format", "f", "JSON", "Comma-separated output formats: JSON, XML, YAML, PLAIN/TEXT/FLAT")
	f.StringP("outputDir", "o", "output", "Output directory")
	f.Bool("separateFiles", false, "Write each pattern to its own files")
	f.Bool("oneSamplePerFile", false, "Write each generated sample to its own file")
	f.Bool("grouped", false, "Group aggregated JSON samples under their pattern key")
	f.Int("minRepeat", sampler.DefaultMinRepeat, "Lower end of the repetition bound range")
	f.Int("maxRepeat", sampler.DefaultMaxRepeat, "Upper end of the repetition bound range")
	f.Uint64("seed", 0, "Seed the random source for a reproducible run")
	f.Bool("no-history", false, "Do not record the run in the history database")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd, a)
	}
}

func runGenerate(cmd *cobra.Command, a *app) error {
	flags := cmd.Flags()
	cfg := a.cfg

	if flags.Changed("count") {
		cfg.Count, _ = flags.GetInt("count")
	}
	if flags.Changed("format") {
		raw, _ := flags.GetString("format")
		cfg.Formats = strings.Split(raw, ",")
	}
	if flags.Changed("outputDir") {
		cfg.OutputDir, _ = flags.GetString("outputDir")
	}
	if flags.Changed("grouped") {
		cfg.JSONGrouped, _ = flags.GetBool("grouped")
	}
	if flags.Changed("minRepeat") {
		cfg.MinRepeat, _ = flags.GetInt("minRepeat")
	}
	if flags.Changed("maxRepeat") {
		cfg.MaxRepeat, _ = flags.GetInt("maxRepeat")
	}
	if noHistory, _ := flags.GetBool("no-history"); noHistory {
		cfg.History = false
	}
	if err := cfg.Validate(); err != nil {
		return cmdErr("config", err)
	}

	set, err := a.loadPatterns()
	if err != nil {
		return cmdErr("load patterns", err)
	}

	query := patterns.Query{}
	query.Name, _ = flags.GetString("selector")
	if flags.Changed("index") {
		idx, _ := flags.GetInt("index")
		query.Index = &idx
	}
	sel, err := set.Resolve(query)
	if err != nil {
		reportSelection(cmd.ErrOrStderr(), err)
		return &reportedError{err: err}
	}

	formats, err := format.ParseList(cfg.Formats...)
	if err != nil {
		a.logger.Warn("unsupported format, writing JSON instead", zap.Error(err))
	}

	opts := sampler.Options{MinRepeat: cfg.MinRepeat, MaxRepeat: cfg.MaxRepeat}
	if flags.Changed("seed") {
		seed, _ := flags.GetUint64("seed")
		opts.Rand = rand.New(rand.NewPCG(seed, seed))
	}

	separate, _ := flags.GetBool("separateFiles")
	perSample, _ := flags.GetBool("oneSamplePerFile")
	req := emit.Request{
		Selector:         sel.Name,
		Count:            cfg.Count,
		Formats:          formats,
		OutputDir:        cfg.OutputDir,
		SeparateFiles:    separate,
		OneSamplePerFile: perSample,
		Grouped:          cfg.JSONGrouped,
	}

	out := cmd.OutOrStdout()
	e := emit.New(set,
		emit.WithLogger(a.logger),
		emit.WithSamplerOptions(opts),
		emit.WithNotify(func(r emit.Request) {
			if !a.silent {
				printMessage(out, r)
			}
		}),
	)

	results, err := e.Generate(req)
	if err != nil {
		return cmdErr("generate", err)
	}

	if cfg.History {
		a.record(cmd, results)
	}
	if !a.silent {
		printSummary(out, results)
	}
	return nil
}

// record stores each result in the history database. Failures are logged,
// since the files are already written.
func (a *app) record(cmd *cobra.Command, results []emit.Result) {
	s, err := a.openStore()
	if err != nil {
		a.logger.Warn("history unavailable", zap.Error(err))
		return
	}
	defer s.Close()

	for _, res := range results {
		run, err := s.Record(cmd.Context(), store.RecordParams{
			Selector:  res.Request.Label(),
			Count:     res.Request.Count,
			Formats:   res.Request.FormatNames(),
			OutputDir: res.Request.OutputDir,
			Layout:    res.Request.Layout(),
			Samples:   res.Samples,
			Bytes:     res.Bytes,
			Files:     res.Files,
		})
		if err != nil {
			a.logger.Warn("record run", zap.Error(err))
			return
		}
		a.logger.Debug("recorded run", zap.String("id", run.ID))
	}
}

func reportSelection(w io.Writer, err error) {
	var ie *patterns.IndexOutOfRangeError
	var ue *patterns.UnknownPatternError
	switch {
	case errors.As(err, &ie):
		fmt.Fprintf(w, "Invalid Selector Index, out of range (0-%d)\n", ie.Count-1)
	case errors.As(err, &ue):
		fmt.Fprintln(w, "Invalid Selector:", ue.Name)
		if len(ue.Suggestions) > 0 {
			fmt.Fprintf(w, "Did you mean: %s\n", strings.Join(ue.Suggestions, ", "))
		}
	default:
		fmt.Fprintf(w, "error: %v\n", err)
	}
}

func printMessage(w io.Writer, r emit.Request) {
	fmt.Fprintf(w, "Generating %s samples of %s as %s\n",
		countStyle.Render(fmt.Sprint(r.Count)),
		selectorStyle.Render(`"`+r.Label()+`"`),
		formatStyle.Render(strings.Join(r.FormatNames(), ",")))
}

func printSummary(w io.Writer, results []emit.Result) {
	var files int
	var size int64
	for _, r := range results {
		files += len(r.Files)
		size += r.Bytes
	}
	fmt.Fprintf(w, "Wrote %d files (%s)\n", files, humanize.Bytes(uint64(size)))
}
