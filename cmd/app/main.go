package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/asakura/interlink/internal"
	"github.com/asakura/interlink/internal/index"
	"github.com/asakura/interlink/internal/mcpserver"
	"github.com/asakura/interlink/internal/postservice"
	"github.com/asakura/interlink/internal/seo"
	"github.com/asakura/interlink/internal/storage"
	pkgconfig "github.com/asakura/interlink/pkg/config"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfExists(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func newService(cfg *internal.Config, db *index.DB) (*postservice.Service, storage.Provider, error) {
	store, err := storage.NewFS(cfg.Site.Root)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	svc := postservice.NewService(store, db, cfg.Site.PostsDir, cfg.Site.DraftsDir, cfg.Site.KeywordsPath(), cfg.Linker.MaxLinks, logger)
	return svc, store, nil
}

func runAnnotate(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, _, err := newService(cfg, nil)
	if err != nil {
		return err
	}

	write := cmd.Bool("write")
	results, err := svc.Annotate(ctx, write)
	if err != nil {
		return fmt.Errorf("annotate: %w", err)
	}

	total := 0
	for _, r := range results {
		if len(r.Inserted) == 0 {
			continue
		}
		total += len(r.Inserted)
		fmt.Printf("%s (%s)\n", r.Path, r.URL)
		for _, l := range r.Inserted {
			fmt.Printf("  %s -> %s\n", l.Keyword, l.TargetURL)
		}
	}
	if write {
		fmt.Printf("%d links inserted across %d posts\n", total, len(results))
	} else {
		fmt.Printf("%d links would be inserted across %d posts (dry run, pass --write to persist)\n", total, len(results))
	}
	return nil
}

func runAnalyze(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, _, err := newService(cfg, nil)
	if err != nil {
		return err
	}

	analyses, err := svc.Analyze(ctx, cmd.Bool("drafts"))
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	out := cmd.String("output")
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()
	if err := seo.WriteReport(f, analyses, time.Now()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	fmt.Printf("%d posts analyzed, average score %.1f, report written to %s\n",
		len(analyses), seo.AverageScore(analyses), out)
	for _, a := range seo.LowScoring(analyses) {
		fmt.Printf("  low score %d: %s (%s)\n", a.Score, a.Title, a.Path)
	}
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	svc, store, err := newService(cfg, db)
	if err != nil {
		return err
	}

	// Logs go to stderr: stdout carries the MCP stdio transport.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	if err := index.Sync(db, store, cfg.Site.PostsDir, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	return mcpserver.New(svc, store).ServeStdio()
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "interlink.yml",
		Value:       "interlink.yml",
		Sources:     cli.EnvVars("INTERLINK_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:  "interlink",
		Usage: "Internal link annotator and SEO toolkit for Jekyll-style blogs",
		Flags: []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "annotate",
				Usage:  "Insert internal links between posts based on title keywords",
				Action: runAnnotate,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "write",
						Usage: "Persist rewritten bodies (default: dry run)",
					},
				},
			},
			{
				Name:   "analyze",
				Usage:  "Score posts against the SEO checklist and write a Markdown report",
				Action: runAnalyze,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "drafts",
						Usage: "Include _drafts in the analysis",
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "Report output path",
						Value: "seo_report.md",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Run the preview API server with live reload",
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP server on stdio for LLM integration",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
