package storage

import (
	"sync"
	"time"

	"fxd/internal/config"
	"fxd/internal/domain"
)

// Storage persists and loads run results (e.g. for the fails viewer).
type Storage interface {
	Save(run domain.Run) error
	Load() (*domain.RunResultsOutput, error)
	// SaveOutput writes the full output (e.g. after partial re-run updates).
	SaveOutput(output *domain.RunResultsOutput) error
}

// New returns MySQL storage when a results DSN is configured and JSON
// file storage otherwise.
func New(cfg *config.Config) (Storage, error) {
	if cfg.ResultsDSN != "" {
		st, err := OpenMySQL(cfg.ResultsDSN)
		if err != nil {
			return nil, err
		}
		return st, nil
	}
	return NewJSONStorage(cfg), nil
}

// BuildOutput summarizes a finished run into its persisted form
func BuildOutput(run domain.Run) *domain.RunResultsOutput {
	meta := domain.RunResultsMeta{
		TotalFixtures:   len(run.Outcomes),
		Duration:        run.Duration.String(),
		DurationSeconds: run.Duration.Seconds(),
		Workers:         run.Workers,
		Timestamp:       time.Now().Format(time.RFC3339),
	}

	details := make([]domain.Failure, 0)
	for _, o := range run.Outcomes {
		switch o.Status {
		case domain.StatusPass:
			meta.PassedFixtures++
		case domain.StatusIgnored:
			meta.IgnoredFixtures++
		default:
			meta.FailedFixtures++
			details = append(details, domain.NewFailure(o))
		}
	}
	for _, cov := range run.Coverage {
		if !cov.Complete() {
			meta.IncompleteGroups = append(meta.IncompleteGroups, cov.Group)
		}
	}

	return &domain.RunResultsOutput{Meta: meta, Coverage: run.Coverage, Details: details}
}

// Lazy opens the configured storage on first use, so commands that never
// touch results never connect to a results database.
type Lazy struct {
	cfg  *config.Config
	once sync.Once
	st   Storage
	err  error
}

// NewLazy creates a Lazy storage for cfg
func NewLazy(cfg *config.Config) *Lazy {
	return &Lazy{cfg: cfg}
}

func (l *Lazy) get() (Storage, error) {
	l.once.Do(func() {
		l.st, l.err = New(l.cfg)
	})
	return l.st, l.err
}

// Save stores a finished run
func (l *Lazy) Save(run domain.Run) error {
	st, err := l.get()
	if err != nil {
		return err
	}
	return st.Save(run)
}

// Load reads the last stored run
func (l *Lazy) Load() (*domain.RunResultsOutput, error) {
	st, err := l.get()
	if err != nil {
		return nil, err
	}
	return st.Load()
}

// SaveOutput rewrites the last stored run
func (l *Lazy) SaveOutput(output *domain.RunResultsOutput) error {
	st, err := l.get()
	if err != nil {
		return err
	}
	return st.SaveOutput(output)
}
