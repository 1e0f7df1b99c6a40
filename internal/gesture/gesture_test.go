package gesture

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TSKoduru/rpi-gamehawk/internal/board"
	"github.com/TSKoduru/rpi-gamehawk/internal/calibration"
	"github.com/TSKoduru/rpi-gamehawk/internal/hid"
	"github.com/TSKoduru/rpi-gamehawk/internal/pointer"
	"github.com/TSKoduru/rpi-gamehawk/internal/solver"
)

// recorder captures transport states; failOnRelease makes exactly the
// release reports (button bitmask zero after a press) fail.
type recorder struct {
	states        []hid.State
	failOnRelease bool
}

func (r *recorder) Send(s hid.State) error {
	prevHeld := len(r.states) > 0 && r.states[len(r.states)-1].Buttons != 0
	r.states = append(r.states, s)
	if r.failOnRelease && prevHeld && s.Buttons == 0 {
		return errors.New("interrupt channel closed")
	}
	return nil
}

// testMapper spreads cells 100 device units apart so steps are observable.
func testMapper(t *testing.T) calibration.Mapper {
	t.Helper()
	tbl, err := calibration.Interpolate(calibration.Point{X: 0, Y: 0}, calibration.Point{X: 300, Y: 300}, 4, 4)
	require.NoError(t, err)
	return tbl
}

func newSequencer(t *testing.T, rec *recorder, opts Options) *Sequencer {
	t.Helper()
	ctrl, err := pointer.NewController(rec, pointer.Options{MaxStep: 50})
	require.NoError(t, err)
	return NewSequencer(ctrl, testMapper(t), opts)
}

func theResult() solver.Result {
	return solver.Result{
		Word: "the",
		Path: []board.Position{{Row: 0, Col: 1}, {Row: 0, Col: 2}, {Row: 0, Col: 3}},
	}
}

func TestRunPhases(t *testing.T) {
	rec := &recorder{}
	seq := newSequencer(t, rec, Options{})

	err := seq.Run(context.Background(), []solver.Result{theResult()})
	require.NoError(t, err)
	require.NotEmpty(t, rec.states)

	// Phase order: button-up hover moves, then a press at the first cell,
	// held drag states through the path, then a release at the last cell.
	i := 0
	for ; i < len(rec.states) && rec.states[i].Buttons == 0; i++ {
	}
	require.Less(t, i, len(rec.states), "no press state emitted")

	press := rec.states[i]
	require.Equal(t, hid.ButtonLeft, press.Buttons)
	require.Equal(t, 100, press.X, "press must land on the first cell")
	require.Equal(t, 0, press.Y)

	// Everything between press and release is dragged with the button held.
	last := rec.states[len(rec.states)-1]
	require.Equal(t, hid.ButtonNone, last.Buttons, "sequence must end released")
	require.Equal(t, 300, last.X, "release must land on the final cell")
	for _, s := range rec.states[i : len(rec.states)-1] {
		require.Equal(t, hid.ButtonLeft, s.Buttons)
	}
}

func TestRunProgressCallback(t *testing.T) {
	rec := &recorder{}
	seq := newSequencer(t, rec, Options{})

	var got []string
	seq.SetOnWord(func(word string, index, total int) {
		got = append(got, word)
		require.Equal(t, len(got), index)
		require.Equal(t, 2, total)
	})

	two := []solver.Result{theResult(), theResult()}
	require.NoError(t, seq.Run(context.Background(), two))
	require.Equal(t, []string{"the", "the"}, got)
}

func TestRunRecalibratesEveryN(t *testing.T) {
	rec := &recorder{}
	seq := newSequencer(t, rec, Options{RecalEvery: 2})

	results := []solver.Result{theResult(), theResult(), theResult()}
	require.NoError(t, seq.Run(context.Background(), results))

	// After recalibration the tracked position is (0,0), so the next hover
	// starts from the origin again: expect at least one state at X<=50
	// after the release of word two.
	releases := 0
	sawOriginAfterSecond := false
	for _, s := range rec.states {
		if s.Buttons == hid.ButtonNone && s.X == 300 {
			releases++
		}
		if releases == 2 && s.X <= 50 {
			sawOriginAfterSecond = true
		}
	}
	require.Equal(t, 3, releases)
	require.True(t, sawOriginAfterSecond, "no recalibration sweep observed after word 2")
}

func TestRunStuckButtonAborts(t *testing.T) {
	rec := &recorder{failOnRelease: true}
	seq := newSequencer(t, rec, Options{})

	err := seq.Run(context.Background(), []solver.Result{theResult(), theResult()})
	require.Error(t, err)
	require.True(t, errors.Is(err, pointer.ErrStuckButton))
}

func TestRunHonorsCancelBetweenWords(t *testing.T) {
	rec := &recorder{}
	seq := newSequencer(t, rec, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	words := 0
	seq.SetOnWord(func(string, int, int) {
		words++
		cancel()
	})

	err := seq.Run(ctx, []solver.Result{theResult(), theResult(), theResult()})
	require.True(t, errors.Is(err, context.Canceled))
	require.Equal(t, 1, words, "cancel must stop the run at the next word boundary")

	// The button is not left held.
	require.Equal(t, hid.ButtonNone, rec.states[len(rec.states)-1].Buttons)
}
