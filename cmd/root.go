package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/tsh/internal/config"
	"github.com/Tiliavir/tsh/internal/logging"
	"github.com/Tiliavir/tsh/internal/model"
	"github.com/Tiliavir/tsh/internal/session"
	"github.com/Tiliavir/tsh/internal/storage"
	"github.com/Tiliavir/tsh/internal/timecalc"
)

var (
	flagJob         string
	flagConvention  string
	flagDate        string
	flagResetSchema bool
)

var rootCmd = &cobra.Command{
	Use:   "tsh",
	Short: "tsh – a weekly multi-job timesheet",
	Long: `tsh keeps weekly timesheets for several jobs.
Each week has seven rows (clock in, break, clock out) and the hours are
computed for you. Weeks are kept in a spreadsheet workbook or a SQLite
database under ~/.tsh/ (override with TSH_HOME).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagJob, "job", "j", "", "Job to work on (default: the job selected with 'tsh job use')")
	pf.StringVarP(&flagConvention, "convention", "c", "", "Week convention: monday or saturday")
	pf.StringVarP(&flagDate, "date", "d", "", "Any date inside the week, YYYY-MM-DD (default: today)")
	pf.BoolVar(&flagResetSchema, "reset-schema", false, "Clear the weeks table if its header is wrong (destroys its rows)")

	rootCmd.AddCommand(jobCmd)
	rootCmd.AddCommand(weekCmd)
	rootCmd.AddCommand(inCmd)
	rootCmd.AddCommand(breakCmd)
	rootCmd.AddCommand(outCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
}

// exitError carries the process exit code: 1 for user errors, 2 for
// storage errors.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(format string, args ...any) error {
	return &exitError{code: 1, err: fmt.Errorf(format, args...)}
}

func storageError(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: 2, err: err}
}

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if errors.Is(err, storage.ErrStoreUnavailable) || errors.Is(err, storage.ErrSchemaMismatch) {
		return 2
	}
	return 1
}

// app is everything a command needs, opened once per invocation.
type app struct {
	base   string
	cfg    config.Config
	log    *log.Logger
	store  *storage.Store
	drafts *session.Drafts
	state  session.State
	out    io.Writer
	in     io.Reader
}

func openApp(cmd *cobra.Command) (*app, error) {
	if err := config.LoadEnv(); err != nil {
		return nil, err
	}
	base, err := storage.BaseDir()
	if err != nil {
		return nil, storageError(err)
	}
	cfg, created, err := config.Load(base)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if created {
		logger.Info("wrote default config", "path", cfg.Path)
	}
	for _, k := range cfg.Undecoded {
		logger.Warn("unknown config key ignored", "key", k, "file", cfg.Path)
	}

	store, err := storage.Open(cmd.Context(), storage.OpenOptions{
		Backend:         cfg.Storage.Backend,
		Path:            cfg.Storage.Path,
		JobsSheet:       cfg.Storage.JobsSheet,
		WeeksSheet:      cfg.Storage.WeeksSheet,
		ResetOnMismatch: cfg.Storage.ResetOnSchemaMismatch || flagResetSchema,
		Logger:          logger,
	})
	if err != nil {
		if errors.Is(err, storage.ErrSchemaMismatch) {
			err = fmt.Errorf("%w\nTip: back up %s and rerun with --reset-schema to rewrite the header", err, cfg.Storage.Path)
		}
		return nil, storageError(err)
	}
	logger.Debug("opened store", "backend", cfg.Storage.Backend, "path", store.Location)

	state, err := session.LoadState(base)
	if err != nil {
		// A corrupt state file is backed up; start fresh rather than fail.
		logger.Warn("ignoring session state", "err", err)
		state = session.State{}
	}

	return &app{
		base:   base,
		cfg:    cfg,
		log:    logger,
		store:  store,
		drafts: session.NewDrafts(base),
		state:  state,
		out:    cmd.OutOrStdout(),
		in:     cmd.InOrStdin(),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn("closing store", "err", err)
	}
}

func (a *app) saveState() error {
	return storageError(session.SaveState(a.base, a.state))
}

// convention resolves --convention, then the remembered one, then config.
func (a *app) convention() (model.Convention, error) {
	if flagConvention != "" {
		c, err := model.ParseConvention(flagConvention)
		if err != nil {
			return c, userError("%v", err)
		}
		return c, nil
	}
	if a.state.Convention != nil {
		return *a.state.Convention, nil
	}
	return a.cfg.Convention(), nil
}

// anchor returns the --date calendar day, or today.
func anchor() (time.Time, error) {
	if flagDate == "" {
		return timecalc.Today(), nil
	}
	d, err := time.Parse(model.DateLayout, strings.TrimSpace(flagDate))
	if err != nil {
		return time.Time{}, userError("invalid --date %q: want YYYY-MM-DD", flagDate)
	}
	return d, nil
}

// job resolves --job, then the remembered job, and checks it is registered.
func (a *app) job(ctx context.Context) (string, error) {
	name := strings.TrimSpace(flagJob)
	if name == "" {
		name = a.state.ActiveJob
	}
	if name == "" {
		return "", userError("no job selected: run 'tsh job use <name>' or pass --job")
	}
	return a.requireJob(ctx, name)
}

// requireJob returns name if the registry has it.
func (a *app) requireJob(ctx context.Context, name string) (string, error) {
	ok, err := a.store.Jobs.Exists(ctx, name)
	if err != nil {
		return "", storageError(err)
	}
	if !ok {
		return "", userError("unknown job %q: create it with 'tsh job create %s'", name, name)
	}
	return name, nil
}

// target resolves the job and the week a command operates on.
func (a *app) target(ctx context.Context) (string, timecalc.Week, error) {
	job, err := a.job(ctx)
	if err != nil {
		return "", timecalc.Week{}, err
	}
	conv, err := a.convention()
	if err != nil {
		return "", timecalc.Week{}, err
	}
	day, err := anchor()
	if err != nil {
		return "", timecalc.Week{}, err
	}
	return job, timecalc.ResolveWeek(day, conv), nil
}

// openWeek returns the record being edited for the target week.
func (a *app) openWeek(ctx context.Context) (*model.WeekRecord, session.Origin, error) {
	job, week, err := a.target(ctx)
	if err != nil {
		return nil, session.OriginBlank, err
	}
	rec, origin, err := a.drafts.Open(ctx, a.store.Weeks, week, job)
	if err != nil {
		return nil, origin, storageError(err)
	}
	a.log.Debug("opened week", "week", rec.Identity, "from", origin)
	return rec, origin, nil
}

// keepDraft recomputes hours and holds rec as the unsaved draft.
func (a *app) keepDraft(rec *model.WeekRecord) ([7]timecalc.Result, error) {
	results := timecalc.Recompute(rec)
	for i, r := range results {
		if r.Status == timecalc.StatusParseFailure {
			a.log.Warn("time not understood, counted as 0 hours", "day", rec.Days[i].Day, "reason", r.Reason)
		}
		if r.BreakIgnored {
			a.log.Debug("break not applied, needs a valid start and end", "day", rec.Days[i].Day)
		}
	}
	return results, storageError(a.drafts.Put(rec))
}
