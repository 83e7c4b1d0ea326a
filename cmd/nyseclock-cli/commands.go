package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"nyseclock/internal/api"
	"nyseclock/internal/config"
	"nyseclock/internal/domain"
	"nyseclock/internal/holidays"
	"nyseclock/internal/market"
	"nyseclock/internal/store"
	"nyseclock/pkg/nyseclock"
)

const version = "0.1.0"

type options struct {
	configPath string
	serverURL  string
	at         string
	jsonOut    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "nyseclock-cli",
		Short:        "Show NYSE market status, upcoming session boundaries and holidays",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return opts.validate()
		},
	}

	defaultConfig := "config/nyseclock.yaml"
	if p := os.Getenv("NYSECLOCK_CONFIG"); p != "" {
		defaultConfig = p
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultConfig, "Path to the YAML config file.")
	root.PersistentFlags().StringVarP(&opts.serverURL, "server", "s", "", "Query a running nyseclock-server at this base URL instead of computing locally.")
	root.PersistentFlags().StringVar(&opts.at, "at", "", "Evaluate at this RFC 3339 instant instead of now; cannot be combined with --server.")
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "Print JSON instead of text.")

	root.AddCommand(
		newStatusCmd(opts),
		newUpcomingCmd(opts),
		newHolidaysCmd(opts),
		newExportCmd(opts),
		newWatchCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "nyseclock-cli %s\n", version)
		},
	}
}

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current market status and the next session boundaries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var st api.StatusJSON
			if opts.serverURL != "" {
				remote, err := nyseclock.NewClient(opts.serverURL).GetStatus(ctx)
				if err != nil {
					return err
				}
				st = statusFromRemote(remote)
			} else {
				engine, now, err := opts.localEngine(ctx)
				if err != nil {
					return err
				}
				st = api.NewStatusJSON(engine.Snapshot(now))
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), st)
			}
			printStatus(cmd.OutOrStdout(), st)
			return nil
		},
	}
}

func newUpcomingCmd(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List the next session boundaries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var events []api.EventJSON
			if opts.serverURL != "" {
				remote, err := nyseclock.NewClient(opts.serverURL).GetUpcoming(ctx, limit)
				if err != nil {
					return err
				}
				events = eventsFromRemote(remote.Events)
			} else {
				engine, now, err := opts.localEngine(ctx)
				if err != nil {
					return err
				}
				if engine.Calendar().State() != domain.CalendarReady {
					fmt.Fprintln(cmd.ErrOrStderr(), api.Advisory)
				}
				events = api.NewEventsJSON(now, engine.Upcoming(now, limit))
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), events)
			}
			printEvents(cmd.OutOrStdout(), events)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 4, "Number of events to list.")
	return cmd
}

func newHolidaysCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "holidays",
		Short: "List the loaded NYSE holidays",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var resp api.HolidaysJSON
			if opts.serverURL != "" {
				remote, err := nyseclock.NewClient(opts.serverURL).GetHolidays(ctx)
				if err != nil {
					return err
				}
				resp = api.HolidaysJSON{CalendarState: remote.CalendarState, Error: remote.Error}
				for _, h := range remote.Holidays {
					resp.Holidays = append(resp.Holidays, api.HolidayJSON{Date: h.Date, Name: h.Name})
				}
			} else {
				engine, _, err := opts.localEngine(ctx)
				if err != nil {
					return err
				}
				cal := engine.Calendar()
				resp.CalendarState = string(cal.State())
				for _, h := range cal.Holidays() {
					resp.Holidays = append(resp.Holidays, api.HolidayJSON{Date: h.Date.String(), Name: h.Name})
				}
				if err := cal.Err(); err != nil {
					resp.Error = err.Error()
				}
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			w := cmd.OutOrStdout()
			if resp.CalendarState != string(domain.CalendarReady) {
				fmt.Fprintln(w, api.Advisory)
			}
			for _, h := range resp.Holidays {
				fmt.Fprintf(w, "%s  %s\n", h.Date, h.Name)
			}
			return nil
		},
	}
}

func newExportCmd(opts *options) *cobra.Command {
	var (
		from    string
		days    int
		dataDir string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the session schedule of a date range to Parquet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			engine, now, err := opts.localEngine(ctx)
			if err != nil {
				return err
			}
			if engine.Calendar().State() != domain.CalendarReady {
				return fmt.Errorf("refusing to export without holiday data: %w", engine.Calendar().Err())
			}

			start := engine.Clock().DateOf(now)
			if from != "" {
				if start, err = domain.ParseDate(from); err != nil {
					return err
				}
			}
			if dataDir == "" {
				cfg, err := config.Load(opts.configPath)
				if err != nil {
					return err
				}
				dataDir = cfg.Storage.DataDir
			}

			events := engine.Schedule(start, days)
			ps := store.NewParquetStore(dataDir)
			if err := ps.WriteSchedule(ctx, events); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d session boundaries from %s (%d days) to %s\n",
				len(events), start, days, dataDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "First date to export (YYYY-MM-DD); defaults to today in New York.")
	cmd.Flags().IntVar(&days, "days", 30, "Number of calendar days to export.")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Output directory; defaults to storage.data_dir from the config.")
	return cmd
}

// validate rejects flag combinations that would otherwise be silently ignored.
func (o *options) validate() error {
	if o.at != "" && o.serverURL != "" {
		return errors.New("--at cannot be combined with --server")
	}
	return nil
}

// localEngine builds and populates an engine from the config file. A failed
// holiday load is reported on stderr and the engine runs degraded.
func (o *options) localEngine(ctx context.Context) (*market.Engine, time.Time, error) {
	now := time.Now()
	if o.at != "" {
		t, err := time.Parse(time.RFC3339, o.at)
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("parsing --at: %w", err)
		}
		now = t
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, time.Time{}, err
	}
	src, err := holidays.NewSource(cfg.Holidays)
	if err != nil {
		return nil, time.Time{}, err
	}

	// Logs go to stderr so that --json output stays parseable.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	loadAt := now
	cal := market.NewHolidayCalendar(market.CalendarConfig{
		Source:  src,
		Timeout: cfg.Holidays.Timeout,
		Now:     func() time.Time { return loadAt },
		Logger:  logger,
	})
	engine := market.NewEngine(cal, nil, cfg.Session.Lookahead, logger)
	_ = engine.Populate(ctx)
	return engine, now, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printStatus(w io.Writer, st api.StatusJSON) {
	if st.Advisory != "" {
		fmt.Fprintln(w, st.Advisory)
	}
	switch {
	case st.Reason != "":
		fmt.Fprintf(w, "Market: %s (%s)\n", st.Status, st.Reason)
	default:
		fmt.Fprintf(w, "Market: %s\n", st.Status)
	}
	printEvents(w, st.Upcoming)
}

func printEvents(w io.Writer, events []api.EventJSON) {
	ny := market.MustNYSEZone().Location()
	for _, ev := range events {
		fmt.Fprintf(w, "  %-19s %s  in %s\n", ev.Label, ev.At.In(ny).Format("Mon 2006-01-02 15:04 MST"), ev.Countdown)
	}
}

func statusFromRemote(r *nyseclock.Status) api.StatusJSON {
	return api.StatusJSON{
		Now:           r.Now,
		Status:        r.Status,
		Reason:        r.Reason,
		ClosedForDay:  r.ClosedForDay,
		Upcoming:      eventsFromRemote(r.Upcoming),
		CalendarState: r.CalendarState,
		Advisory:      r.Advisory,
	}
}

func eventsFromRemote(events []nyseclock.Event) []api.EventJSON {
	out := make([]api.EventJSON, len(events))
	for i, ev := range events {
		out[i] = api.EventJSON{
			Label:     ev.Label,
			Status:    ev.Status,
			At:        ev.At,
			Date:      ev.Date,
			Countdown: ev.Countdown,
			Seconds:   ev.Seconds,
		}
	}
	return out
}
