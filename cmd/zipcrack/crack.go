package zipcrack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/redactyl/zipcrack/internal/archive"
	"github.com/redactyl/zipcrack/internal/candidate"
	"github.com/redactyl/zipcrack/internal/config"
	"github.com/redactyl/zipcrack/internal/history"
	"github.com/redactyl/zipcrack/internal/logging"
	"github.com/redactyl/zipcrack/internal/search"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

var (
	flagOutput    string
	flagAlphabet  string
	flagMinLength int
	flagMaxLength int
	flagMembers   string
	flagHistory   bool
	flagProgress  bool
)

func init() {
	addSearchFlags(rootCmd.Flags())
}

// addSearchFlags binds the search knobs to f. The crack command and the
// config helpers share the same variables.
func addSearchFlags(f *pflag.FlagSet) {
	f.StringVarP(&flagOutput, "output", "o", search.DefaultOutputDir, "directory to extract into once the password is found")
	f.StringVar(&flagAlphabet, "alphabet", search.DefaultAlphabet, "characters to build candidates from, in enumeration order")
	f.IntVar(&flagMinLength, "min-length", search.DefaultMinLength, "shortest candidate length")
	f.IntVar(&flagMaxLength, "max-length", search.DefaultMaxLength, "longest candidate length")
	f.StringVar(&flagMembers, "members", "", "comma-separated globs limiting which members are extracted")
	f.BoolVar(&flagHistory, "history", false, "record this run in the history log")
	f.BoolVar(&flagProgress, "progress", true, "show a live attempt counter on stderr when it is a terminal")
}

// settings is everything a run needs after flags and config files are merged.
type settings struct {
	search      search.Config
	noColor     bool
	logLevel    string
	logJSON     bool
	history     bool
	historyPath string
}

func loadConfigs() (local, global config.FileConfig, err error) {
	if flagConfig != "" {
		local, err = config.LoadFile(flagConfig)
		if err != nil {
			return local, global, fmt.Errorf("load config %s: %w", flagConfig, err)
		}
		return local, global, nil
	}
	if c, err := config.LoadGlobal(); err == nil {
		global = c
	}
	if wd, err := os.Getwd(); err == nil {
		if c, err := config.LoadLocal(wd); err == nil {
			local = c
		}
	}
	return local, global, nil
}

func resolve(cmd *cobra.Command, args []string) (settings, error) {
	lcfg, gcfg, err := loadConfigs()
	if err != nil {
		return settings{}, err
	}
	sc := search.Config{
		ArchivePath: pickString(false, search.DefaultArchivePath, lcfg.Archive, gcfg.Archive),
		OutputDir:   pickString(changed(cmd, "output"), flagOutput, lcfg.Output, gcfg.Output),
		Alphabet:    pickString(changed(cmd, "alphabet"), flagAlphabet, lcfg.Alphabet, gcfg.Alphabet),
		MinLength:   pickInt(changed(cmd, "min-length"), flagMinLength, lcfg.MinLength, gcfg.MinLength),
		MaxLength:   pickInt(changed(cmd, "max-length"), flagMaxLength, lcfg.MaxLength, gcfg.MaxLength),
		Members:     splitList(pickString(changed(cmd, "members"), flagMembers, lcfg.Members, gcfg.Members)),
	}
	if len(args) == 1 {
		sc.ArchivePath = args[0]
	}
	hc := config.MergeHistory(lcfg.GetHistoryConfig(), gcfg.GetHistoryConfig())
	recordHistory := hc.IsEnabled()
	if changed(cmd, "history") {
		recordHistory = flagHistory
	}
	return settings{
		search:      sc,
		noColor:     pickBool(changed(cmd, "no-color"), flagNoColor, lcfg.NoColor, gcfg.NoColor),
		logLevel:    pickString(changed(cmd, "log-level"), flagLogLevel, lcfg.LogLevel, gcfg.LogLevel),
		logJSON:     pickBool(changed(cmd, "log-json"), flagLogJSON, lcfg.LogJSON, gcfg.LogJSON),
		history:     recordHistory,
		historyPath: hc.GetPath(),
	}, nil
}

func runCrack(cmd *cobra.Command, args []string) error {
	st, err := resolve(cmd, args)
	if err != nil {
		return err
	}
	if st.noColor {
		color.NoColor = true
	}
	logOpts := logging.DefaultOptions()
	if st.logLevel != "" {
		logOpts.Level = st.logLevel
	}
	logOpts.JSON = st.logJSON
	logOpts.NoColor = st.noColor
	logOpts.Output = cmd.ErrOrStderr()
	log := logging.New(logOpts)
	out := cmd.OutOrStdout()

	cfg := st.search
	cfg.OnLength = func(length, _ int) {
		fmt.Fprintf(out, "Trying passwords of length %d...\n", length)
	}
	counter := newProgress(cmd.ErrOrStderr(), cfg)
	if counter != nil {
		cfg.OnAttempt = counter.tick
	}

	s, err := search.New(cfg, search.WithLogger(log))
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	res, searchErr := s.Search(ctx)
	if counter != nil {
		counter.done()
	}
	report(out, cfg, res, searchErr)

	if st.history {
		rec := newRecord(cfg, res, searchErr)
		if err := history.New(st.historyPath).Append(rec); err != nil {
			log.WithError(err).Warn("could not record run history")
		}
	}
	return nil
}

// report prints the user-facing outcome. Every outcome, including a missing
// archive, ends the run successfully.
func report(w io.Writer, cfg search.Config, res search.Result, err error) {
	green := color.New(color.FgGreen, color.Bold)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	switch {
	case errors.Is(err, archive.ErrNotFound):
		red.Fprintf(w, "Error: The file '%s' was not found\n", cfg.ArchivePath)
	case res.Outcome == search.Found:
		fmt.Fprintln(w)
		green.Fprintf(w, "Password found: %s\n", res.Password)
		if err != nil {
			red.Fprintf(w, "An unexpected error occurred: %v\n", err)
			return
		}
		fmt.Fprintf(w, "Files extracted to '%s' directory.\n", cfg.OutputDir)
	case errors.Is(err, context.Canceled):
		yellow.Fprintf(w, "Search interrupted after %d attempts.\n", res.Attempts)
	case err != nil:
		red.Fprintf(w, "An unexpected error occurred: %v\n", err)
	default:
		yellow.Fprintln(w, "Password not found within the specified character set and length range.")
	}
}

func newRecord(cfg search.Config, res search.Result, err error) history.RunRecord {
	rec := history.RunRecord{
		Archive:   cfg.ArchivePath,
		Format:    res.Format,
		Outcome:   res.Outcome.String(),
		Alphabet:  cfg.Alphabet,
		MinLength: cfg.MinLength,
		MaxLength: cfg.MaxLength,
		Attempts:  res.Attempts,
		Duration:  res.Duration.Round(time.Millisecond).String(),
		Extracted: len(res.Extracted),
	}
	if fp, ferr := history.Fingerprint(cfg.ArchivePath); ferr == nil {
		rec.Fingerprint = fp
	}
	if res.Outcome == search.Found {
		rec.Password = history.MaskPassword(res.Password)
		rec.OutputDir = cfg.OutputDir
	}
	switch {
	case errors.Is(err, archive.ErrNotFound):
		rec.Outcome = "not_found"
		rec.Error = err.Error()
	case errors.Is(err, context.Canceled):
		rec.Outcome = "interrupted"
	case err != nil:
		if res.Outcome != search.Found {
			rec.Outcome = "error"
		}
		rec.Error = err.Error()
	}
	rec.Timestamp = time.Now()
	return rec
}

// progress draws "[n/total] candidate" on a terminal.
type progress struct {
	w     io.Writer
	total int
	n     int
}

func newProgress(w io.Writer, cfg search.Config) *progress {
	if !flagProgress {
		return nil
	}
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil
	}
	a, err := candidate.New(cfg.Alphabet)
	if err != nil {
		return nil
	}
	total, err := candidate.Count(a.Len(), cfg.MinLength, cfg.MaxLength)
	if err != nil || total == 0 {
		return nil
	}
	return &progress{w: w, total: total}
}

func (p *progress) tick(c string) {
	p.n++
	if p.n%250 == 0 || p.n == p.total {
		pct := float64(p.n) / float64(p.total) * 100
		_, _ = fmt.Fprintf(p.w, "\r[%d/%d] %.0f%% %s", p.n, p.total, pct, c)
	}
}

func (p *progress) done() {
	if p.n > 0 {
		_, _ = fmt.Fprint(p.w, "\r"+strings.Repeat(" ", 40)+"\r")
	}
}
