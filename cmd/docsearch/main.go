// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/poiesic/docsearch"
	"github.com/poiesic/docsearch/api"
	"github.com/poiesic/docsearch/config"
	"github.com/poiesic/docsearch/search"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "docsearch",
		Usage: "Similarity search over a document collection",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML, TOML or JSON config file",
				EnvVars: []string{"DOCSEARCH_CONFIG"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Index stored documents and serve the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (overrides server.addr)",
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report indexing progress every N documents (0 disables)",
						Value: 1000,
					},
				},
			},
			{
				Name:      "add",
				Usage:     "Store and index a document",
				ArgsUsage: "<content>",
				Action:    addCommand,
			},
			{
				Name:      "search",
				Usage:     "Run a similarity query against the stored documents",
				ArgsUsage: "<text>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Usage:    "User id the call is charged to",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of results",
						Value:   api.DefaultTopK,
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Similarity threshold (echoed, not applied)",
						Value: api.DefaultThreshold,
					},
				},
			},
			{
				Name:   "seed",
				Usage:  "Store a built-in set of sample documents",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Seed even if the store is not empty",
					},
				},
			},
			{
				Name:   "import",
				Usage:  "Store and index one document per line of a file",
				Action: importCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Input file, or - for stdin",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N documents",
						Value: 100,
					},
				},
			},
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}

func openApp(c *cli.Context, cfg *config.Config, opts ...search.Option) (*docsearch.App, error) {
	app, err := docsearch.Open(c.Context, cfg,
		docsearch.WithLogger(slog.Default()),
		docsearch.WithSearchOptions(opts...))
	if err != nil {
		return nil, fmt.Errorf("failed to open docsearch: %w", err)
	}
	return app, nil
}

func serveCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if addr := c.String("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	var opts []search.Option
	if interval := c.Int("report-interval"); interval > 0 {
		opts = append(opts, search.WithProgress(c.App.ErrWriter, interval))
	}
	app, err := openApp(c, cfg, opts...)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := app.Populate(ctx); err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	server := api.NewServer(app.Service(),
		api.WithLogger(slog.Default()),
		api.WithMetricsHandler(app.Metrics().Handler()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe(cfg.Server.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return <-errCh
}

func addCommand(c *cli.Context) error {
	content := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(content) == "" {
		return errors.New("content is required")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	app, err := openApp(c, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	doc, err := app.Service().AddDocument(c.Context, content)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%d\t%s\n", doc.ID, doc.Content)
	return nil
}

func searchCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	app, err := openApp(c, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if _, err := app.Populate(c.Context); err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	resp, err := app.Service().Search(c.Context, search.Request{
		Text:      strings.Join(c.Args().Slice(), " "),
		UserID:    c.String("user"),
		TopK:      c.Int("top-k"),
		Threshold: c.Float64("threshold"),
	})
	if err != nil {
		return err
	}
	for _, hit := range resp.Hits {
		fmt.Fprintf(c.App.Writer, "%d\t%s\n", hit.ID, hit.Content)
	}
	return nil
}

func importCommand(c *cli.Context) error {
	lines, err := readLines(c.String("file"))
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	app, err := openApp(c, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	fmt.Fprintf(c.App.ErrWriter, "Importing %d documents\n", len(lines))
	tracker := search.NewProgressTracker(c.App.ErrWriter, len(lines), c.Int("report-interval"))
	tracker.Start()
	for _, line := range lines {
		if _, err := app.Service().AddDocument(c.Context, line); err != nil {
			return fmt.Errorf("import failed after %d documents: %w", app.Service().IndexSize(), err)
		}
		tracker.Increment(1)
	}
	tracker.Finish()

	slog.Info("import complete", "documents", len(lines), "elapsed", tracker.Elapsed())
	return nil
}

// readLines returns the non-blank lines of path, or of stdin when path is "-".
func readLines(path string) ([]string, error) {
	in := os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	var lines []string
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return lines, nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
	return nil
}
