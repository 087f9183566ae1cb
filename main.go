package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/JPE-Studio/time-tracker/internal/config"
	"github.com/JPE-Studio/time-tracker/internal/report"
	"github.com/JPE-Studio/time-tracker/internal/store"
	"github.com/JPE-Studio/time-tracker/internal/tracker"
	"github.com/JPE-Studio/time-tracker/internal/ui"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Track struct{} `cmd:"" default:"1" help:"Open the interactive tracker"`

	Export struct {
		Output string `short:"o" help:"Write CSV to this file instead of stdout"`
	} `cmd:"" help:"Export all time entries as CSV"`

	Report struct {
		Period string `short:"p" enum:"day,week,month,year" default:"month" help:"Report period"`
		Output string `short:"o" help:"Write HTML to this file instead of stdout"`
	} `cmd:"" help:"Render an HTML billing report"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelWarn
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fatal(err)
	}

	db, err := store.OpenSQLite(cfg.DatabasePath())
	if err != nil {
		fatal(err)
	}
	defer db.Close()

	repo := tracker.NewRepository(db)
	timer := tracker.NewTimer(repo)

	switch ctx.Command() {
	case "track":
		err = runTracker(repo, timer, cfg)
	case "export":
		err = runExport(repo, CLI.Export.Output)
	case "report":
		err = runReport(repo, cfg, CLI.Report.Period, CLI.Report.Output)
	}
	if err != nil {
		fatal(err)
	}
}

func runTracker(repo *tracker.Repository, timer *tracker.Timer, cfg config.Config) error {
	m, err := ui.NewModel(repo, timer, cfg)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	go func() {
		for range ticker.C {
			p.Send(ui.MsgTick{})
		}
	}()

	_, err = p.Run()
	return err
}

func runExport(repo *tracker.Repository, output string) error {
	doc, err := repo.LoadData()
	if err != nil {
		return err
	}
	w, done, err := outputWriter(output)
	if err != nil {
		return err
	}
	defer done()
	return report.WriteCSV(w, doc)
}

func runReport(repo *tracker.Repository, cfg config.Config, periodKey, output string) error {
	doc, err := repo.LoadData()
	if err != nil {
		return err
	}
	period, err := report.ForKey(periodKey, time.Now())
	if err != nil {
		return err
	}
	rep := report.Build(doc, period)
	w, done, err := outputWriter(output)
	if err != nil {
		return err
	}
	defer done()
	return report.RenderHTML(w, rep, cfg.Currency)
}

func outputWriter(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
