package scheduler

import (
	"encoding/json"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/gol-board/model"
	"github.com/sheikhrachel/gol-board/utils"
)

func testConfig() utils.Config {
	config := utils.DefaultConfig()
	config.Size = 5
	return config
}

func blinker(t *testing.T) *model.Grid {
	t.Helper()
	g, err := model.ParseRows([]string{
		"00000",
		"00000",
		"01110",
		"00000",
		"00000",
	})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestInitialState(t *testing.T) {
	s := New(model.NewGrid(5), testConfig())

	if s.State() != Stopped {
		t.Errorf("Expected Stopped, got %v", s.State())
	}
	if s.TickRate() != 0.25 {
		t.Errorf("Expected tick rate 0.25, got %v", s.TickRate())
	}
	if snap := s.Snapshot(); snap.Status != StatusExtinct || snap.Playing {
		t.Errorf("unexpected initial snapshot: %+v", snap)
	}
}

func TestPlayPauseTransitions(t *testing.T) {
	s := New(model.NewGrid(5), testConfig())
	defer s.Pause()

	s.Play()
	if s.State() != Running {
		t.Fatalf("Expected Running after Play")
	}
	s.Play()
	if s.State() != Running {
		t.Errorf("Expected Play while running to keep Running")
	}

	s.Pause()
	if s.State() != Stopped {
		t.Errorf("Expected Stopped after Pause")
	}
	s.Pause()
	if s.State() != Stopped {
		t.Errorf("Expected Pause while stopped to keep Stopped")
	}

	s.PlayPause()
	if s.State() != Running {
		t.Errorf("Expected PlayPause to start")
	}
	s.PlayPause()
	if s.State() != Stopped {
		t.Errorf("Expected PlayPause to stop")
	}
}

func TestRunningStepsAndPauseStops(t *testing.T) {
	config := testConfig()
	config.TickRate = config.TickMin
	s := New(blinker(t), config)

	s.Play()
	waitFor(t, "two generations", func() bool { return s.Generation() >= 2 })
	s.Pause()

	stoppedAt := s.Generation()
	time.Sleep(50 * time.Millisecond)
	if s.Generation() != stoppedAt {
		t.Errorf("Expected no generations after Pause, went from %d to %d", stoppedAt, s.Generation())
	}

	// blinker alternates, so parity decides its phase
	g := s.Grid()
	vertical := g.Get(2, 1) && g.Get(2, 2) && g.Get(2, 3) && !g.Get(1, 2)
	if (stoppedAt%2 == 1) != vertical {
		t.Errorf("generation %d: unexpected blinker phase %v", stoppedAt, g.Rows())
	}
}

func TestStepAndStatus(t *testing.T) {
	s := New(blinker(t), testConfig())

	s.Step()
	if snap := s.Snapshot(); snap.Generation != 1 || snap.Status != StatusActive {
		t.Errorf("Expected active generation 1, got %d %s", snap.Generation, snap.Status)
	}
	s.Step()
	if snap := s.Snapshot(); snap.Status != StatusStagnant {
		t.Errorf("Expected blinker to be reported stagnant, got %s", snap.Status)
	}
	if s.State() != Stopped {
		t.Errorf("Expected Step not to start the run loop")
	}

	if err := s.Toggle(0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap := s.Snapshot(); snap.Status != StatusActive {
		t.Errorf("Expected edit to reset status to active, got %s", snap.Status)
	}
}

func TestSingleCellDiesOut(t *testing.T) {
	s := New(model.NewGrid(5), testConfig())
	_ = s.Toggle(2, 2)

	s.Step()
	if snap := s.Snapshot(); snap.Population != 0 || snap.Status != StatusExtinct {
		t.Errorf("Expected lone cell to die, got population %d status %s", snap.Population, snap.Status)
	}

	raw, err := json.Marshal(s.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"status":"extinct"`) {
		t.Errorf("Expected extinct status on the wire, got %s", raw)
	}
}

func TestChangeTickRate(t *testing.T) {
	cases := []struct {
		name  string
		delta float64
		want  float64
	}{
		{"up", 0.1, 0.35},
		{"down", -0.2, 0.05},
		{"rounds", 0.004, 0.25},
		{"clamps high", 10, 2},
		{"clamps low", -10, 0.01},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := New(model.NewGrid(5), testConfig())
			s.Play()

			if got := s.ChangeTickRate(c.delta); got != c.want {
				t.Errorf("Expected %v, got %v", c.want, got)
			}
			if s.State() != Stopped {
				t.Errorf("Expected ChangeTickRate to pause")
			}
		})
	}
}

func TestIncreaseDecreaseBounds(t *testing.T) {
	config := testConfig()
	config.TickRate = config.TickMax
	s := New(model.NewGrid(5), config)
	s.Play()
	defer s.Pause()

	if s.IncreaseTickRate() {
		t.Errorf("Expected increase at tick_max to be rejected")
	}
	if s.State() != Running || s.TickRate() != 2 {
		t.Errorf("Expected rejected increase to leave state and rate alone, got %v %v", s.State(), s.TickRate())
	}

	if !s.DecreaseTickRate() {
		t.Fatalf("Expected decrease below tick_max to apply")
	}
	if s.TickRate() != 1.99 || s.State() != Stopped {
		t.Errorf("Expected 1.99 and Stopped, got %v %v", s.TickRate(), s.State())
	}

	config.TickRate = config.TickMin
	low := New(model.NewGrid(5), config)
	if low.DecreaseTickRate() {
		t.Errorf("Expected decrease at tick_min to be rejected")
	}
	if !low.IncreaseTickRate() || low.TickRate() != 0.02 {
		t.Errorf("Expected increase to 0.02, got %v", low.TickRate())
	}
}

func TestTickRateNeverLeavesBounds(t *testing.T) {
	config := testConfig()
	s := New(model.NewGrid(5), config)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		switch rng.Intn(3) {
		case 0:
			s.IncreaseTickRate()
		case 1:
			s.DecreaseTickRate()
		default:
			s.ChangeTickRate((rng.Float64() - 0.5) * 3)
		}
		if r := s.TickRate(); r < config.TickMin || r > config.TickMax {
			t.Fatalf("step %d: rate %v outside [%v, %v]", i, r, config.TickMin, config.TickMax)
		}
	}
}

func TestToggleOutOfRange(t *testing.T) {
	s := New(model.NewGrid(5), testConfig())
	notified := 0
	s.Subscribe(func(Snapshot) { notified++ })

	if err := s.Toggle(5, 0); !errors.Is(err, model.ErrOutOfRange) {
		t.Errorf("Expected ErrOutOfRange, got %v", err)
	}
	if err := s.Highlight(0, -1); !errors.Is(err, model.ErrOutOfRange) {
		t.Errorf("Expected ErrOutOfRange, got %v", err)
	}
	if notified != 0 {
		t.Errorf("Expected rejected input not to notify, got %d", notified)
	}
}

func TestClearPausesAndEmpties(t *testing.T) {
	s := New(blinker(t), testConfig())
	s.Step()
	s.Play()

	s.Clear()
	if s.State() != Stopped {
		t.Errorf("Expected Clear to pause")
	}
	snap := s.Snapshot()
	if snap.Population != 0 || snap.Generation != 0 {
		t.Errorf("Expected empty board at generation 0, got %d at %d", snap.Population, snap.Generation)
	}

	s.Step()
	if s.Snapshot().Population != 0 {
		t.Errorf("Expected Clear then Step to stay empty")
	}
}

func TestSubscribeReceivesChanges(t *testing.T) {
	s := New(model.NewGrid(5), testConfig())

	var (
		mu    sync.Mutex
		snaps []Snapshot
	)
	s.Subscribe(func(snap Snapshot) {
		mu.Lock()
		snaps = append(snaps, snap)
		mu.Unlock()
	})

	_ = s.Toggle(1, 1)
	_ = s.Highlight(3, 4)
	s.IncreaseTickRate()

	mu.Lock()
	defer mu.Unlock()
	if len(snaps) != 3 {
		t.Fatalf("Expected 3 notifications, got %d", len(snaps))
	}
	if snaps[0].Rows[1] != "01000" {
		t.Errorf("Expected toggled row, got %q", snaps[0].Rows[1])
	}
	if h := snaps[1].Highlight; h == nil || h.X != 3 || h.Y != 4 {
		t.Errorf("Expected highlight at (3, 4), got %+v", h)
	}
	if snaps[2].TickRate != 0.26 {
		t.Errorf("Expected tick rate 0.26, got %v", snaps[2].TickRate)
	}
}

func TestUnhighlight(t *testing.T) {
	s := New(model.NewGrid(5), testConfig())
	_ = s.Highlight(1, 1)
	s.Unhighlight()

	if s.Snapshot().Highlight != nil {
		t.Errorf("Expected no highlight")
	}
}
