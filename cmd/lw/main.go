package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/vanderheijden86/lineweave/pkg/config"
	"github.com/vanderheijden86/lineweave/pkg/export"
	"github.com/vanderheijden86/lineweave/pkg/layout"
	"github.com/vanderheijden86/lineweave/pkg/model"
	"github.com/vanderheijden86/lineweave/pkg/preview"
	"github.com/vanderheijden86/lineweave/pkg/repo"
	"github.com/vanderheijden86/lineweave/pkg/store"
	"github.com/vanderheijden86/lineweave/pkg/ui"
	"github.com/vanderheijden86/lineweave/pkg/version"
	"github.com/vanderheijden86/lineweave/pkg/watcher"
)

func main() {
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	repoDir := flag.String("repo", ".", "Repository directory (or a repository name from the config)")
	exportPath := flag.String("export", "", "Render a lineage snapshot to this path and exit (svg or png)")
	exportFormat := flag.String("export-format", "", "Snapshot format, inferred from the path extension when empty")
	title := flag.String("title", "", "Snapshot title (export mode)")
	logFile := flag.String("log-file", "", "Write debug logs to this file")
	forcePoll := flag.Bool("force-poll", false, "Use polling instead of fsnotify for file watching")
	flag.Parse()

	if *help {
		fmt.Println("Usage: lw [options]")
		fmt.Println("\nAn interactive lineage canvas for project graphs.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("lw %s\n", version.Version)
		os.Exit(0)
	}

	logger := log.New(io.Discard)
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger = log.New(f)
		logger.SetLevel(log.DebugLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		// Non-fatal: continue with defaults
		logger.Warn("config load failed", "err", err)
		cfg = config.DefaultConfig()
	}

	dir := *repoDir
	if named := cfg.FindRepository(dir); named != nil {
		dir = named.ResolvedPath()
	}

	svc, err := repo.Open(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening repository: %v\n", err)
		os.Exit(1)
	}
	defer svc.Close()

	engine := layout.Engine{
		SpacingX:   cfg.Layout.SpacingX,
		SpacingY:   cfg.Layout.SpacingY,
		WidthBound: cfg.Layout.WidthBound,
	}
	graph := store.New(engine)

	doc, err := svc.DB().LoadGraphData(svc.Dir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading graph: %v\n", err)
		os.Exit(1)
	}
	projects, err := svc.ListProjects(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing projects: %v\n", err)
		os.Exit(1)
	}
	report := graph.LoadProjects(doc, projects)
	if report.PrunedNodes > 0 || report.PrunedEdges > 0 {
		logger.Info("pruned stale graph refs",
			"nodes", report.PrunedNodes, "edges", report.PrunedEdges)
	}

	// Headless export mode needs no terminal.
	if *exportPath != "" {
		projMap := make(map[string]model.Project, len(projects))
		for _, p := range projects {
			projMap[p.ID] = p
		}
		stats := store.ComputeStats(graph.Nodes(), graph.Edges())
		name := *title
		if name == "" {
			name = filepath.Base(svc.Dir())
		}
		err := export.SaveSnapshot(export.SnapshotOptions{
			Path:     *exportPath,
			Format:   *exportFormat,
			Title:    name,
			Doc:      graph.Document(),
			Projects: projMap,
			Stats:    &stats,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *exportPath)
		os.Exit(0)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "lw needs an interactive terminal (use --export for headless snapshots)")
		os.Exit(1)
	}

	delay := store.DefaultPersistDelay
	if cfg.Persist.DebounceMillis > 0 {
		delay = time.Duration(cfg.Persist.DebounceMillis) * time.Millisecond
	}
	persister := store.NewPersister(svc.DB(), svc.Dir(), delay, logger)
	defer persister.Close()

	fsw, err := watcher.New(svc.Dir(), watcher.WithForcePoll(*forcePoll))
	if err != nil {
		logger.Warn("file watcher unavailable", "err", err)
		fsw = nil
	} else if err := fsw.Start(); err != nil {
		logger.Warn("file watcher failed to start", "err", err)
		fsw = nil
	}
	if fsw != nil {
		defer fsw.Stop()
	}

	m := ui.New(ui.Options{
		Service:   svc,
		Graph:     graph,
		Persister: persister,
		Previews:  preview.NewCache(svc),
		Watcher:   fsw,
		Config:    cfg,
		Logger:    logger,
	})

	if err := runTUIProgram(m); err != nil {
		fmt.Fprintf(os.Stderr, "Error running lineweave: %v\n", err)
		os.Exit(1)
	}
}

func runTUIProgram(m tea.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	_, err := p.Run()
	if err != nil && (errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted)) {
		return nil
	}
	return err
}
