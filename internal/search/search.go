package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redactyl/zipcrack/internal/archive"
	"github.com/redactyl/zipcrack/internal/candidate"
	"github.com/sirupsen/logrus"
)

var (
	// ErrAttemptFailed wraps attempts that failed for reasons other than a
	// wrong password.
	ErrAttemptFailed = errors.New("password attempt failed")
	// ErrExtract wraps failures writing members after a password was found.
	ErrExtract = errors.New("extraction failed")
	// ErrAlreadyRun is returned when Search is called twice on one Searcher.
	ErrAlreadyRun = errors.New("search already run")
)

// Outcome is the terminal result of a completed search.
type Outcome int

const (
	Found Outcome = iota
	Exhausted
)

func (o Outcome) String() string {
	if o == Found {
		return "found"
	}
	return "exhausted"
}

// State tracks where a Searcher is in its lifecycle.
type State int

const (
	NotStarted State = iota
	Searching
	Done
	Failed
)

// Result describes a completed search.
type Result struct {
	Outcome  Outcome
	Password string
	// Attempts counts candidates tested, including the accepted one.
	Attempts  int
	Format    string
	Extracted []string
	Duration  time.Duration
}

// Opener opens an archive by path.
type Opener func(path string) (archive.Archive, error)

// Option customizes a Searcher.
type Option func(*Searcher)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Searcher) { s.log = l }
}

// WithOpener replaces archive.Open.
func WithOpener(fn Opener) Option {
	return func(s *Searcher) { s.open = fn }
}

// Searcher runs one password search. It is not safe for concurrent use.
type Searcher struct {
	cfg      Config
	alphabet candidate.Alphabet
	log      logrus.FieldLogger
	open     Opener

	state  State
	length int
	index  int
}

// New validates cfg and returns a Searcher ready to run.
func New(cfg Config, opts ...Option) (*Searcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search config: %w", err)
	}
	a, _ := candidate.New(cfg.Alphabet)
	s := &Searcher{cfg: cfg, alphabet: a, open: archive.Open}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.log = l
	}
	return s, nil
}

// State returns the current lifecycle state.
func (s *Searcher) State() State { return s.state }

// Position returns the length being enumerated and the 1-based index of the
// last candidate tried within it.
func (s *Searcher) Position() (length, index int) { return s.length, s.index }

// Search opens the archive, tests candidates in order and extracts the
// archive once a password is accepted. A missing archive yields an error
// wrapping archive.ErrNotFound before any candidate is tried. Exhausting
// every candidate is not an error.
func (s *Searcher) Search(ctx context.Context) (Result, error) {
	if s.state != NotStarted {
		return Result{}, ErrAlreadyRun
	}
	s.state = Searching
	started := time.Now()
	res, err := s.run(ctx)
	res.Duration = time.Since(started)
	if err != nil && res.Outcome != Found {
		s.state = Failed
	} else {
		s.state = Done
	}
	return res, err
}

func (s *Searcher) run(ctx context.Context) (Result, error) {
	res := Result{Outcome: Exhausted}
	a, err := s.open(s.cfg.ArchivePath)
	if err != nil {
		return res, fmt.Errorf("open %s: %w", s.cfg.ArchivePath, err)
	}
	defer a.Close()

	res.Format = a.Format()
	log := s.log.WithFields(logrus.Fields{
		"archive": s.cfg.ArchivePath,
		"format":  a.Format(),
	})
	log.WithField("members", len(a.Members())).Debug("archive opened")
	if !a.Encrypted() {
		log.Warn("archive has no encrypted members; the first candidate will be accepted")
	}

	for length := s.cfg.MinLength; length <= s.cfg.MaxLength; length++ {
		s.length, s.index = length, 0
		if s.cfg.OnLength != nil {
			s.cfg.OnLength(length, candidate.PerLength(s.alphabet.Len(), length))
		}
		for pw := range s.alphabet.Sequence(length) {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			s.index++
			res.Attempts++
			if s.cfg.OnAttempt != nil {
				s.cfg.OnAttempt(pw)
			}
			att := a.Test(pw)
			switch {
			case att.Outcome == archive.Accepted:
				res.Outcome = Found
				res.Password = pw
				log.WithFields(logrus.Fields{"length": length, "attempts": res.Attempts}).Info("password accepted")
				return s.extract(a, res, log)
			case att.Fatal():
				log.WithFields(logrus.Fields{
					"outcome": att.Outcome.String(),
					"member":  att.Member,
				}).WithError(att.Err).Error("aborting search")
				return res, fmt.Errorf("%w: %s on %q: %w", ErrAttemptFailed, att.Outcome, att.Member, att.Err)
			default:
				log.WithFields(logrus.Fields{"member": att.Member}).WithError(att.Err).Trace("candidate rejected")
			}
		}
		log.WithFields(logrus.Fields{"length": length, "attempts": res.Attempts}).Debug("length exhausted")
	}
	return res, nil
}

func (s *Searcher) extract(a archive.Archive, res Result, log logrus.FieldLogger) (Result, error) {
	written, err := a.Extract(s.cfg.OutputDir, res.Password, s.cfg.allow())
	res.Extracted = written
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrExtract, err)
	}
	log.WithFields(logrus.Fields{"output": s.cfg.OutputDir, "files": len(written)}).Info("archive extracted")
	return res, nil
}
