package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/receivables/internal/config"
	"github.com/cleared-dev/receivables/internal/snapshot"
)

type initOptions struct {
	name        string
	source      string
	databaseURL string
}

func newInitCommand() *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new receivables workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			cfg, err := runInit(absDir, opts)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if cfg.Source.Type == config.SourcePostgres {
				ctx := cmd.Context()
				if ctx == nil {
					ctx = context.Background()
				}
				if err := initDatabase(ctx, w, cfg.Source, opts.databaseURL); err != nil {
					return err
				}
			}
			fmt.Fprintf(w, "Initialized receivables workspace at %s\n", absDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&opts.source, "source", config.SourceDir, "data source: dir, http or postgres")
	cmd.Flags().StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL URL for the postgres source (default: $DATABASE_URL)")

	return cmd
}

func runInit(dir string, opts initOptions) (*config.Config, error) {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return nil, fmt.Errorf("%s already exists", cfgPath)
	}

	source := strings.ToLower(opts.source)
	switch source {
	case config.SourceDir, config.SourceHTTP, config.SourcePostgres:
	default:
		return nil, fmt.Errorf("unknown source type %q", opts.source)
	}

	cfg := config.Default(opts.name)
	cfg.Source.Type = source
	// A URL given on the command line is saved; $DATABASE_URL stays in the
	// environment.
	if source == config.SourcePostgres {
		cfg.Source.DatabaseURL = opts.databaseURL
	}

	dataDir := filepath.Join(dir, cfg.Source.Dir)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", cfg.Source.Dir, err)
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}

	// Seed empty collections so the dir source has something to read.
	for _, c := range snapshot.Collections {
		path := filepath.Join(dataDir, string(c)+".json")
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte("[]\n"), 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", path, err)
		}
	}

	gitignore := ".env\n*.log\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return nil, fmt.Errorf("writing .gitignore: %w", err)
	}

	return cfg, nil
}

// initDatabase creates the documents table for the postgres source. Without
// a URL it only prints how to finish the setup.
func initDatabase(ctx context.Context, w io.Writer, src config.SourceConfig, flagURL string) error {
	url := flagURL
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		fmt.Fprintln(w, "DATABASE_URL not set; skipped creating the documents table")
		return nil
	}

	pool, err := snapshot.NewPool(ctx, url)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	if err := snapshot.NewPostgresSource(pool, src.Table).CreateSchema(ctx); err != nil {
		return err
	}
	fmt.Fprintf(w, "Created table %s\n", src.Table)
	return nil
}
