package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/gantt/internal/config"
	"github.com/papapumpkin/gantt/internal/journal"
	"github.com/papapumpkin/gantt/internal/log"
	"github.com/papapumpkin/gantt/internal/schedule"
	"github.com/papapumpkin/gantt/internal/store"
	"github.com/papapumpkin/gantt/internal/tracker"
	"github.com/papapumpkin/gantt/internal/ui"
)

const dateLayout = "2006-01-02"

// app bundles the collaborators a command needs.
type app struct {
	cfg     config.Config
	store   *store.Store
	journal *journal.Emitter
	tracker *tracker.Tracker
	printer *ui.Printer
}

// loadConfig reads configuration and configures logging.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if err := log.Setup(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr()); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newPrinter returns a printer on the command's stdout honouring the color
// setting.
func newPrinter(cmd *cobra.Command, cfg config.Config) *ui.Printer {
	return ui.New(cmd.OutOrStdout(), cfg.Color)
}

// openApp loads configuration and opens the store and journal. Callers must
// Close the returned app.
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cmd.Context(), cfg.DBPath)
	if err != nil {
		return nil, err
	}
	em, err := journal.NewEmitter(cfg.JournalPath)
	if err != nil {
		st.Close()
		return nil, err
	}

	opts := schedule.Options{ToleranceDays: cfg.VarianceToleranceDays, Gap: cfg.ShiftGap()}
	log.Get().WithField("db", cfg.DBPath).Debug("store opened")
	return &app{
		cfg:     cfg,
		store:   st,
		journal: em,
		tracker: tracker.New(st, tracker.WithJournal(em), tracker.WithScheduleOptions(opts)),
		printer: newPrinter(cmd, cfg),
	}, nil
}

func (a *app) Close() {
	if err := a.journal.Close(); err != nil {
		log.Get().WithError(err).Warn("closing journal")
	}
	if err := a.store.Close(); err != nil {
		log.Get().WithError(err).Warn("closing store")
	}
}

// project resolves a project reference (ID or name).
func (a *app) project(ctx context.Context, ref string) (store.Project, error) {
	return a.store.Project(ctx, ref)
}

// parseDate parses a YYYY-MM-DD calendar date as UTC midnight.
func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

// today returns the current calendar date as UTC midnight.
func today() time.Time {
	y, m, d := time.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
