package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/receivables/internal/config"
	"github.com/cleared-dev/receivables/internal/export"
	"github.com/cleared-dev/receivables/internal/logger"
	"github.com/cleared-dev/receivables/internal/report"
	"github.com/cleared-dev/receivables/internal/snapshot"
)

// session is the loaded state shared by the report commands.
type session struct {
	cfg    *config.Config
	format export.Format
	now    time.Time
	loc    *time.Location
	snap   *snapshot.Snapshot
	log    zerolog.Logger
	closer io.Closer
}

// openSession loads configuration, sets up logging and fetches a snapshot.
// The caller must call close.
func openSession(cmd *cobra.Command, flags *globalFlags) (*session, error) {
	format, err := export.ParseFormat(flags.format)
	if err != nil {
		return nil, err
	}

	if err := config.LoadDotEnv(flags.envFiles...); err != nil {
		return nil, err
	}

	cfg, baseDir, err := loadConfig(flags.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	closer, err := logger.Setup(logger.DefaultConfig().WithOverrides(
		cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output))
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:    cfg,
		format: format,
		log:    logger.WithComponent("commands"),
		closer: closer,
	}

	s.loc, err = cfg.Location()
	if err != nil {
		s.close()
		return nil, err
	}
	s.now, err = parseNow(flags.now, s.loc)
	if err != nil {
		s.close()
		return nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s.snap, err = fetch(ctx, cfg, baseDir)
	if err != nil {
		s.close()
		return nil, err
	}

	s.log.Debug().
		Int("invoices", len(s.snap.Invoices)).
		Int("payments", len(s.snap.Payments)).
		Int("clients", len(s.snap.Clients)).
		Time("now", s.now).
		Msg("snapshot loaded")
	return s, nil
}

// builder returns a report builder over the session snapshot. A positive
// months overrides the configured trend length.
func (s *session) builder(year, months int) *report.Builder {
	if months <= 0 {
		months = s.cfg.Report.MonthsBack
	}
	return report.NewBuilder(s.snap, report.Options{
		Now:        s.now,
		MonthsBack: months,
		Year:       year,
		Location:   s.loc,
	})
}

func (s *session) close() {
	if s.closer != nil {
		_ = s.closer.Close()
	}
}

// loadConfig reads the config file. When the file is absent and the path
// was not given explicitly, defaults with environment overrides are used
// relative to the working directory.
func loadConfig(path string, explicit bool) (*config.Config, string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("resolving config path: %w", err)
	}

	cfg, err := config.Load(absPath)
	if err == nil {
		return cfg, filepath.Dir(absPath), nil
	}
	if explicit || !errors.Is(err, fs.ErrNotExist) {
		return nil, "", err
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("getting working directory: %w", err)
	}
	cfg = config.Default("")
	cfg.ApplyEnv()
	return cfg, wd, nil
}

func fetch(ctx context.Context, cfg *config.Config, baseDir string) (*snapshot.Snapshot, error) {
	src, closeSource, err := snapshot.Open(ctx, cfg.Source, baseDir)
	if err != nil {
		return nil, err
	}
	defer closeSource()

	log := logger.WithComponent("snapshot")
	if ds, ok := src.(*snapshot.DirSource); ok {
		found, err := ds.Available()
		if err != nil {
			return nil, fmt.Errorf("scanning data directory: %w", err)
		}
		if len(found) == 0 {
			log.Warn().Str("dir", ds.Dir).Msg("no collection files found; run init or check source.dir")
		}
	}

	loader := snapshot.NewLoader(src,
		snapshot.WithConcurrency(cfg.Source.Concurrency),
		snapshot.WithLogger(log),
	)
	snap, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	return snap, nil
}

// parseNow accepts RFC 3339 timestamps or plain dates in loc. Empty means
// the current time.
func parseNow(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Now().In(loc), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing --now %q: want RFC 3339 or YYYY-MM-DD", s)
	}
	return t, nil
}
