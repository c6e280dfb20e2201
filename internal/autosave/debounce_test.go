package autosave

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atinyakov/NoteKeeper/internal/clock"
	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	saved []string
	errs  []error
}

func (r *recorder) flush(ctx context.Context, p models.NotePatch) error {
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		if err != nil {
			return err
		}
	}
	r.saved = append(r.saved, *p.Content)
	return nil
}

func content(s string) models.NotePatch { return models.NotePatch{Content: &s} }

func setup(t *testing.T) (*Debouncer, *clock.Fake, *recorder) {
	t.Helper()
	clk := clock.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	rec := &recorder{}
	d := New(context.Background(), clk, 2*time.Second, rec.flush, nil)
	return d, clk, rec
}

func TestDebouncer_LastEditWins(t *testing.T) {
	d, clk, rec := setup(t)

	d.Schedule(content("h"))
	clk.Advance(time.Second)
	d.Schedule(content("he"))
	clk.Advance(time.Second)
	d.Schedule(content("hello"))
	assert.Equal(t, 1, clk.Pending(), "at most one flush pending")
	assert.Empty(t, rec.saved)

	clk.Advance(1999 * time.Millisecond)
	assert.Empty(t, rec.saved)
	clk.Advance(time.Millisecond)
	assert.Equal(t, []string{"hello"}, rec.saved)
	assert.False(t, d.Pending())
}

func TestDebouncer_CancelAndClose(t *testing.T) {
	d, clk, rec := setup(t)

	d.Schedule(content("draft"))
	d.Cancel()
	clk.Advance(time.Minute)
	assert.Empty(t, rec.saved)

	d.Schedule(content("again"))
	d.Close()
	d.Schedule(content("after close"))
	clk.Advance(time.Minute)
	assert.Empty(t, rec.saved)
	assert.False(t, d.Pending())
}

func TestDebouncer_FlushNowBypassesDelay(t *testing.T) {
	d, clk, rec := setup(t)

	require.NoError(t, d.FlushNow(context.Background()), "nothing pending")
	d.Schedule(content("manual"))
	require.NoError(t, d.FlushNow(context.Background()))
	assert.Equal(t, []string{"manual"}, rec.saved)
	assert.Zero(t, clk.Pending())

	clk.Advance(time.Minute)
	assert.Len(t, rec.saved, 1)
}

func TestDebouncer_FailedFlushRetriesNextCycle(t *testing.T) {
	d, clk, rec := setup(t)
	rec.errs = []error{errors.New("offline")}

	d.Schedule(content("keep me"))
	clk.Advance(2 * time.Second)
	assert.Empty(t, rec.saved)
	assert.True(t, d.Pending())

	clk.Advance(2 * time.Second)
	assert.Equal(t, []string{"keep me"}, rec.saved)
	assert.False(t, d.Pending())
}

func TestDebouncer_NewerEditReplacesFailedPatch(t *testing.T) {
	d, clk, rec := setup(t)
	rec.errs = []error{errors.New("offline")}

	d.Schedule(content("old"))
	clk.Advance(2 * time.Second)
	d.Schedule(content("new"))
	clk.Advance(2 * time.Second)
	assert.Equal(t, []string{"new"}, rec.saved)
}

func TestDebouncer_FlushNowErrorKeepsPatch(t *testing.T) {
	d, _, rec := setup(t)
	rec.errs = []error{errors.New("offline")}

	d.Schedule(content("x"))
	err := d.FlushNow(context.Background())
	require.Error(t, err)
	assert.True(t, d.Pending())

	require.NoError(t, d.FlushNow(context.Background()))
	assert.Equal(t, []string{"x"}, rec.saved)
}
