package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/tsh/internal/model"
	"github.com/Tiliavir/tsh/internal/storage"
	"github.com/Tiliavir/tsh/internal/table"
)

func newRegistry(t *testing.T) (*storage.JobRegistry, *storage.WeekStore, *table.Memory) {
	t.Helper()
	jobs := table.NewMemory()
	st, err := storage.OpenTables(context.Background(), jobs, table.NewMemory(), storage.OpenOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st.Jobs, st.Weeks, jobs
}

func TestJobRegistryCreateAndList(t *testing.T) {
	ctx := context.Background()
	reg, _, tbl := newRegistry(t)

	jobs, err := reg.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, jobs)

	name, err := reg.Create(ctx, "  Cafe  ")
	require.NoError(t, err)
	assert.Equal(t, "Cafe", name)
	for _, n := range []string{"Bar", "Cafe", "cafe"} {
		_, err := reg.Create(ctx, n)
		require.NoError(t, err)
	}

	jobs, err = reg.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bar", "Cafe", "cafe"}, jobs)

	h, err := tbl.Header(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.JobsHeader, h, "first job must not become the header")

	ok, err := reg.Exists(ctx, "Bar")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = reg.Exists(ctx, "bar")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestJobRegistryCreateRejectsBlank(t *testing.T) {
	reg, _, _ := newRegistry(t)
	_, err := reg.Create(context.Background(), "   ")
	assert.ErrorIs(t, err, model.ErrEmptyJobName)
}

func TestJobRegistryListSkipsHeaderAndBlankRows(t *testing.T) {
	weeks, _ := newWeekStore(t)
	tbl := table.NewMemory(
		[]string{"Evento", "Trabajo"},
		[]string{"", ""},
		[]string{"x"},
		[]string{"", "Cafe"},
	)
	reg := storage.NewJobRegistry(tbl, weeks)

	jobs, err := reg.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Cafe"}, jobs)
}

func TestJobRegistryDeleteCascades(t *testing.T) {
	ctx := context.Background()
	reg, weeks, _ := newRegistry(t)
	for _, n := range []string{"Cafe", "Bar", "Cafe"} {
		_, err := reg.Create(ctx, n)
		require.NoError(t, err)
	}
	mon := filledWeek("Cafe", model.MondayStart)
	sat := filledWeek("Cafe", model.SaturdayStart)
	bar := filledWeek("Bar", model.MondayStart)
	for _, r := range []*model.WeekRecord{mon, sat, bar} {
		require.NoError(t, weeks.Save(ctx, r))
	}

	jobRows, weekRows, err := reg.Delete(ctx, "Cafe")
	require.NoError(t, err)
	assert.Equal(t, 2, jobRows)
	assert.Equal(t, 14, weekRows)

	jobs, err := reg.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bar"}, jobs)

	left, err := weeks.List(ctx, "Cafe")
	require.NoError(t, err)
	assert.Empty(t, left)
	_, found, err := weeks.Load(ctx, bar.Identity)
	require.NoError(t, err)
	assert.True(t, found)
}
