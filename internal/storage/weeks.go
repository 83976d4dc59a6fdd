package storage

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Tiliavir/tsh/internal/logging"
	"github.com/Tiliavir/tsh/internal/model"
	"github.com/Tiliavir/tsh/internal/table"
	"github.com/Tiliavir/tsh/internal/timecalc"
)

// Options configures a WeekStore.
type Options struct {
	// ResetOnMismatch clears a weeks table whose header is wrong instead of
	// failing with ErrSchemaMismatch. Existing rows are lost.
	ResetOnMismatch bool
	Logger          *log.Logger
}

// WeekStore reconciles week records with the persisted weeks table.
type WeekStore struct {
	tbl table.Table
	log *log.Logger
}

// WeekSummary describes one stored week.
type WeekSummary struct {
	Identity model.WeekIdentity
	Rows     int
	Total    float64
}

// NewWeekStore checks the header of tbl, writing it when the table is
// empty.
func NewWeekStore(ctx context.Context, tbl table.Table, opts Options) (*WeekStore, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	s := &WeekStore{tbl: tbl, log: logger}

	header, err := tbl.Header(ctx)
	if err != nil {
		return nil, unavailable("reading weeks header", err)
	}
	switch {
	case header == nil:
		if err := tbl.Reset(ctx, model.WeeksHeader); err != nil {
			return nil, unavailable("writing weeks header", err)
		}
		logger.Debug("initialised weeks table")
	case !slices.Equal(header, model.WeeksHeader):
		if !opts.ResetOnMismatch {
			return nil, fmt.Errorf("%w: found %q", ErrSchemaMismatch, strings.Join(header, ", "))
		}
		if err := tbl.Reset(ctx, model.WeeksHeader); err != nil {
			return nil, unavailable("resetting weeks table", err)
		}
		logger.Warn("weeks table header mismatch, table cleared", "found", strings.Join(header, ", "))
	}
	return s, nil
}

func identityKey(id model.WeekIdentity, label string) table.Where {
	return table.Where{
		model.ColJob:        id.Job,
		model.ColConvention: label,
		model.ColWeekStart:  id.StartString(),
	}
}

// stored returns the rows of id together with every spelling of its
// convention found among them, canonical label first. Rows written with a
// legacy label ("Lunes a domingo") belong to the same week.
func (s *WeekStore) stored(ctx context.Context, id model.WeekIdentity) ([][]string, []string, error) {
	rows, err := s.tbl.Rows(ctx, table.Where{model.ColJob: id.Job, model.ColWeekStart: id.StartString()})
	if err != nil {
		return nil, nil, err
	}
	labels := []string{id.Convention.Label()}
	var out [][]string
	for _, r := range rows {
		label := pad(r)[model.ColConvention]
		if conv, err := model.ParseConvention(label); err != nil || conv != id.Convention {
			continue
		}
		if !slices.Contains(labels, label) {
			labels = append(labels, label)
		}
		out = append(out, r)
	}
	return out, labels, nil
}

// Load returns the stored record for id. The bool is false when nothing is
// stored for it.
func (s *WeekStore) Load(ctx context.Context, id model.WeekIdentity) (*model.WeekRecord, bool, error) {
	rows, _, err := s.stored(ctx, id)
	if err != nil {
		return nil, false, unavailable("loading week", err)
	}
	if len(rows) == 0 {
		return nil, false, nil
	}

	rec := timecalc.ResolveWeek(id.Start, id.Convention).Blank(id.Job)
	rec.Identity = id

	if len(rows) == len(rec.Days) {
		for i, r := range rows {
			rec.Days[i] = decodeDay(r, rec.Days[i])
		}
		return rec, true, nil
	}

	// A save interrupted between delete and append leaves a partial week.
	// Align what is there by date; missing days come back blank.
	s.log.Warn("stored week has unexpected row count", "week", id.String(), "rows", len(rows))
	for _, r := range rows {
		d := decodeDay(r, model.DayEntry{})
		if i := rec.DayOf(d.Date); i >= 0 {
			d.Day = rec.Days[i].Day
			rec.Days[i] = d
		}
	}
	return rec, true, nil
}

// Save replaces every stored row of rec's identity with its seven rows.
// Rows under a legacy convention label are replaced too.
func (s *WeekStore) Save(ctx context.Context, rec *model.WeekRecord) error {
	rows := make([][]string, len(rec.Days))
	for i, d := range rec.Days {
		rows[i] = encodeDay(rec.Identity, d)
	}
	_, labels, err := s.stored(ctx, rec.Identity)
	if err != nil {
		return unavailable("reading week before save", err)
	}
	for _, legacy := range labels[1:] {
		if _, err := s.tbl.Delete(ctx, identityKey(rec.Identity, legacy)); err != nil {
			return unavailable("clearing legacy week rows", err)
		}
		s.log.Info("rewrote week stored under a legacy label", "week", rec.Identity.String(), "label", legacy)
	}
	key := identityKey(rec.Identity, labels[0])

	if r, ok := s.tbl.(table.Replacer); ok {
		if _, err := r.Replace(ctx, key, rows...); err != nil {
			return unavailable("saving week", err)
		}
		return nil
	}
	if _, err := s.tbl.Delete(ctx, key); err != nil {
		return unavailable("clearing week before save", err)
	}
	if err := s.tbl.Append(ctx, rows...); err != nil {
		return unavailable("appending week rows", err)
	}
	return nil
}

// Delete removes the stored rows of id, under any of its convention labels.
// Deleting an absent week is a no-op.
func (s *WeekStore) Delete(ctx context.Context, id model.WeekIdentity) (int, error) {
	_, labels, err := s.stored(ctx, id)
	if err != nil {
		return 0, unavailable("reading week before delete", err)
	}
	total := 0
	for _, label := range labels {
		n, err := s.tbl.Delete(ctx, identityKey(id, label))
		total += n
		if err != nil {
			return total, unavailable("deleting week", err)
		}
	}
	return total, nil
}

// DeleteForJob removes every stored row of job, across conventions and
// start dates.
func (s *WeekStore) DeleteForJob(ctx context.Context, job string) (int, error) {
	n, err := s.tbl.Delete(ctx, table.Where{model.ColJob: job})
	if err != nil {
		return n, unavailable("deleting weeks of job", err)
	}
	return n, nil
}

// List summarises the stored weeks of job, or of every job when job is
// empty, ordered by job then start date.
func (s *WeekStore) List(ctx context.Context, job string) ([]WeekSummary, error) {
	where := table.Where{}
	if job != "" {
		where[model.ColJob] = job
	}
	rows, err := s.tbl.Rows(ctx, where)
	if err != nil {
		return nil, unavailable("listing weeks", err)
	}

	byKey := map[string]*WeekSummary{}
	var order []string
	for _, r := range rows {
		r = pad(r)
		conv, err := model.ParseConvention(r[model.ColConvention])
		if err != nil {
			s.log.Warn("skipping row with unknown week type", "value", r[model.ColConvention])
			continue
		}
		start, err := time.Parse(model.DateLayout, r[model.ColWeekStart])
		if err != nil {
			s.log.Warn("skipping row with bad week start", "value", r[model.ColWeekStart])
			continue
		}
		id := model.WeekIdentity{Job: r[model.ColJob], Convention: conv, Start: start}
		sum, ok := byKey[id.Key()]
		if !ok {
			sum = &WeekSummary{Identity: id}
			byKey[id.Key()] = sum
			order = append(order, id.Key())
		}
		sum.Rows++
		sum.Total += parseHours(r[model.ColHours])
	}

	out := make([]WeekSummary, 0, len(order))
	for _, k := range order {
		sum := *byKey[k]
		sum.Total = timecalc.RoundHours(sum.Total)
		out = append(out, sum)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Identity, out[j].Identity
		if a.Job != b.Job {
			return a.Job < b.Job
		}
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.Convention < b.Convention
	})
	return out, nil
}

func pad(r []string) []string {
	if len(r) >= len(model.WeeksHeader) {
		return r
	}
	out := make([]string, len(model.WeeksHeader))
	copy(out, r)
	return out
}

func encodeDay(id model.WeekIdentity, d model.DayEntry) []string {
	return []string{
		id.Job,
		id.Convention.Label(),
		id.StartString(),
		d.Day,
		d.DateString(),
		d.ClockIn,
		d.BreakStart,
		d.BreakEnd,
		d.ClockOut,
		strconv.FormatFloat(d.Hours, 'f', -1, 64),
	}
}

// decodeDay reads a stored row. The day label comes from the skeleton, so
// legacy labels ("Lunes") read back in the current form; the stored date
// wins when it parses.
func decodeDay(r []string, skeleton model.DayEntry) model.DayEntry {
	r = pad(r)
	d := model.DayEntry{
		Day:        skeleton.Day,
		Date:       skeleton.Date,
		ClockIn:    r[model.ColClockIn],
		BreakStart: r[model.ColBreakStart],
		BreakEnd:   r[model.ColBreakEnd],
		ClockOut:   r[model.ColClockOut],
		Hours:      parseHours(r[model.ColHours]),
	}
	if d.Day == "" {
		d.Day = r[model.ColDay]
	}
	if t, err := time.Parse(model.DateLayout, strings.TrimSpace(r[model.ColDate])); err == nil {
		d.Date = t
	}
	return d
}

// parseHours coerces a stored hours cell; anything unparseable is 0.
func parseHours(s string) float64 {
	h, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return timecalc.RoundHours(h)
}
