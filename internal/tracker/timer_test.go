package tracker_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/JPE-Studio/time-tracker/internal/store"
	"github.com/JPE-Studio/time-tracker/internal/tracker"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestTimer(t *testing.T) (*tracker.Timer, *tracker.Repository, *store.Memory, *fakeClock) {
	t.Helper()
	mem := store.NewMemory()
	clock := &fakeClock{t: time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)}
	repo := tracker.NewRepository(mem, tracker.WithClock(clock.Now), tracker.WithIDs(sequentialIDs()))
	return tracker.NewTimer(repo), repo, mem, clock
}

func runningEntries(t *testing.T, repo *tracker.Repository) []tracker.TimeEntry {
	t.Helper()
	doc, err := repo.LoadData()
	if err != nil {
		t.Fatalf("LoadData() failed: %v", err)
	}
	var out []tracker.TimeEntry
	for _, e := range doc.TimeEntries {
		if e.IsRunning() {
			out = append(out, e)
		}
	}
	return out
}

func TestStartPauseResumeStop(t *testing.T) {
	timer, repo, _, clock := newTestTimer(t)

	entry, err := timer.Start(tracker.Some("P1"), tracker.Some("C1"), "design")
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if !entry.IsRunning() {
		t.Errorf("new entry should be running, got %s", entry.Status)
	}
	if entry.Duration != 0 {
		t.Errorf("new entry duration = %d, want 0", entry.Duration)
	}

	clock.Advance(125 * time.Second)
	paused, err := timer.Pause(entry.ID)
	if err != nil {
		t.Fatalf("Pause() failed: %v", err)
	}
	if paused == nil {
		t.Fatal("Pause() returned absent for a running entry")
	}
	if paused.Duration != 125 {
		t.Errorf("paused duration = %d, want 125", paused.Duration)
	}
	if paused.Status != tracker.StatusPaused {
		t.Errorf("paused status = %s, want %s", paused.Status, tracker.StatusPaused)
	}
	if paused.EndTime.IsSome() {
		t.Error("pause must not set EndTime")
	}

	clock.Advance(40 * time.Second)
	resumed, err := timer.Resume(entry.ID)
	if err != nil {
		t.Fatalf("Resume() failed: %v", err)
	}
	if resumed == nil {
		t.Fatal("Resume() returned absent for a paused entry")
	}
	if resumed.Duration != 125 {
		t.Errorf("resume changed accumulated duration: %d, want 125", resumed.Duration)
	}
	if !resumed.StartTime.Equal(clock.Now()) {
		t.Errorf("resume should restart the segment at now, got %v", resumed.StartTime)
	}

	clock.Advance(10 * time.Second)
	stopped, err := timer.Stop(entry.ID)
	if err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
	if stopped == nil {
		t.Fatal("Stop() returned absent for a running entry")
	}
	if stopped.Duration != 135 {
		t.Errorf("final duration = %d, want 135", stopped.Duration)
	}
	if stopped.Status != tracker.StatusStopped {
		t.Errorf("final status = %s, want %s", stopped.Status, tracker.StatusStopped)
	}
	end, ok := stopped.EndTime.Get()
	if !ok {
		t.Fatal("stop must set EndTime")
	}
	if !end.Equal(clock.Now()) {
		t.Errorf("EndTime = %v, want %v", end, clock.Now())
	}

	if got := runningEntries(t, repo); len(got) != 0 {
		t.Errorf("%d entries still running after stop", len(got))
	}
}

func TestStartClosesPreviousTimer(t *testing.T) {
	timer, repo, _, clock := newTestTimer(t)

	first, err := timer.Start(tracker.None[string](), tracker.None[string](), "first")
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	clock.Advance(3 * time.Second)

	second, err := timer.Start(tracker.None[string](), tracker.None[string](), "second")
	if err != nil {
		t.Fatalf("second Start() failed: %v", err)
	}

	running := runningEntries(t, repo)
	if len(running) != 1 {
		t.Fatalf("%d running entries after second start, want 1", len(running))
	}
	if running[0].ID != second.ID {
		t.Errorf("running entry is %s, want %s", running[0].ID, second.ID)
	}

	doc, err := repo.LoadData()
	if err != nil {
		t.Fatalf("LoadData() failed: %v", err)
	}
	var closed tracker.TimeEntry
	for _, e := range doc.TimeEntries {
		if e.ID == first.ID {
			closed = e
		}
	}
	if closed.Status != tracker.StatusStopped {
		t.Errorf("first entry status = %s, want %s", closed.Status, tracker.StatusStopped)
	}
	if closed.Duration != 3 {
		t.Errorf("first entry duration = %d, want 3", closed.Duration)
	}
	if closed.EndTime.IsNone() {
		t.Error("forcibly closed entry must have EndTime set")
	}
}

func TestSingleTimerInvariantAcrossSequences(t *testing.T) {
	timer, repo, _, clock := newTestTimer(t)

	var ids []string
	for i := 0; i < 5; i++ {
		e, err := timer.Start(tracker.None[string](), tracker.None[string](), fmt.Sprintf("task %d", i))
		if err != nil {
			t.Fatalf("Start() failed: %v", err)
		}
		ids = append(ids, e.ID)
		clock.Advance(time.Duration(i+1) * time.Second)
		if got := runningEntries(t, repo); len(got) > 1 {
			t.Fatalf("invariant violated: %d running entries", len(got))
		}
	}

	// Resume must also re-assert the invariant even though the targets here
	// are stopped, so these are no-ops.
	for _, id := range ids[:4] {
		if _, err := timer.Resume(id); err != nil {
			t.Fatalf("Resume() failed: %v", err)
		}
		if got := runningEntries(t, repo); len(got) > 1 {
			t.Fatalf("invariant violated after resume: %d running entries", len(got))
		}
	}
}

func TestConservationAcrossSegments(t *testing.T) {
	timer, _, _, clock := newTestTimer(t)

	entry, err := timer.Start(tracker.None[string](), tracker.None[string](), "long haul")
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	segments := []time.Duration{17 * time.Second, 211 * time.Second, 2 * time.Second, 3599 * time.Second}
	var want int64
	for i, seg := range segments {
		clock.Advance(seg)
		want += int64(seg / time.Second)
		if i == len(segments)-1 {
			break
		}
		if _, err := timer.Pause(entry.ID); err != nil {
			t.Fatalf("Pause() failed: %v", err)
		}
		clock.Advance(30 * time.Minute) // off the clock
		if _, err := timer.Resume(entry.ID); err != nil {
			t.Fatalf("Resume() failed: %v", err)
		}
	}

	stopped, err := timer.Stop(entry.ID)
	if err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
	if stopped.Duration != want {
		t.Errorf("total duration = %d, want %d", stopped.Duration, want)
	}
}

func TestPauseAbsentOrNotRunning(t *testing.T) {
	timer, _, mem, clock := newTestTimer(t)

	if e, err := timer.Pause("nope"); err != nil || e != nil {
		t.Errorf("Pause(absent) = (%v, %v), want (nil, nil)", e, err)
	}
	if mem.SaveCount() != 0 {
		t.Errorf("no-op pause persisted %d saves", mem.SaveCount())
	}

	entry, err := timer.Start(tracker.None[string](), tracker.None[string](), "")
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	clock.Advance(time.Second)
	if _, err := timer.Stop(entry.ID); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}

	saves := mem.SaveCount()
	if e, err := timer.Pause(entry.ID); err != nil || e != nil {
		t.Errorf("Pause(stopped) = (%v, %v), want (nil, nil)", e, err)
	}
	if e, err := timer.Stop(entry.ID); err != nil || e != nil {
		t.Errorf("Stop(stopped) = (%v, %v), want (nil, nil)", e, err)
	}
	if e, err := timer.Resume("nope"); err != nil || e != nil {
		t.Errorf("Resume(absent) = (%v, %v), want (nil, nil)", e, err)
	}
	if mem.SaveCount() != saves {
		t.Errorf("no-op transitions persisted %d extra saves", mem.SaveCount()-saves)
	}
}

func TestResumeRejectsStoppedEntry(t *testing.T) {
	timer, _, _, clock := newTestTimer(t)

	entry, err := timer.Start(tracker.None[string](), tracker.None[string](), "")
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	clock.Advance(time.Second)
	if _, err := timer.Stop(entry.ID); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}

	if e, err := timer.Resume(entry.ID); err != nil || e != nil {
		t.Errorf("Resume(stopped) = (%v, %v), want (nil, nil)", e, err)
	}
}

func TestResumeClosesOtherRunningEntry(t *testing.T) {
	timer, repo, _, clock := newTestTimer(t)

	first, err := timer.Start(tracker.None[string](), tracker.None[string](), "first")
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	clock.Advance(10 * time.Second)
	if _, err := timer.Pause(first.ID); err != nil {
		t.Fatalf("Pause() failed: %v", err)
	}

	second, err := timer.Start(tracker.None[string](), tracker.None[string](), "second")
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	clock.Advance(5 * time.Second)

	resumed, err := timer.Resume(first.ID)
	if err != nil {
		t.Fatalf("Resume() failed: %v", err)
	}
	if resumed == nil {
		t.Fatal("Resume() returned absent for a paused entry")
	}

	running := runningEntries(t, repo)
	if len(running) != 1 || running[0].ID != first.ID {
		t.Fatalf("running after resume = %v, want only %s", running, first.ID)
	}

	doc, _ := repo.LoadData()
	for _, e := range doc.TimeEntries {
		if e.ID == second.ID {
			if e.Status != tracker.StatusStopped || e.Duration != 5 {
				t.Errorf("second entry = %s/%ds, want stopped/5s", e.Status, e.Duration)
			}
		}
	}
}

func TestRunningReturnsLiveEntry(t *testing.T) {
	timer, _, _, _ := newTestTimer(t)

	if e, err := timer.Running(); err != nil || e != nil {
		t.Errorf("Running() with no timer = (%v, %v), want (nil, nil)", e, err)
	}

	entry, err := timer.Start(tracker.None[string](), tracker.None[string](), "live")
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	got, err := timer.Running()
	if err != nil {
		t.Fatalf("Running() failed: %v", err)
	}
	if got == nil || got.ID != entry.ID {
		t.Errorf("Running() = %v, want entry %s", got, entry.ID)
	}
}

func TestRunningRepairsMultipleRunningEntries(t *testing.T) {
	mem := store.NewMemory()
	clock := &fakeClock{t: time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)}
	repo := tracker.NewRepository(mem, tracker.WithClock(clock.Now))
	timer := tracker.NewTimer(repo)

	// Plant crash damage: two entries flagged running.
	doc := tracker.NewDocument()
	doc.TimeEntries = []tracker.TimeEntry{
		{
			ID:        "stale",
			StartTime: clock.Now().Add(-time.Hour),
			Duration:  60,
			Status:    tracker.StatusRunning,
			CreatedAt: clock.Now().Add(-2 * time.Hour),
		},
		{
			ID:        "fresh",
			StartTime: clock.Now().Add(-time.Minute),
			Duration:  0,
			Status:    tracker.StatusRunning,
			CreatedAt: clock.Now().Add(-time.Minute),
		},
	}
	if err := mem.Save(doc); err != nil {
		t.Fatalf("seed save failed: %v", err)
	}

	got, err := timer.Running()
	if err != nil {
		t.Fatalf("Running() failed: %v", err)
	}
	if got == nil || got.ID != "fresh" {
		t.Fatalf("Running() kept %v, want the most recently started entry", got)
	}

	loaded, _ := repo.LoadData()
	for _, e := range loaded.TimeEntries {
		switch e.ID {
		case "stale":
			if e.Status != tracker.StatusStopped {
				t.Errorf("stale entry status = %s, want %s", e.Status, tracker.StatusStopped)
			}
			// 60s accumulated plus the hour up to "now".
			if e.Duration != 60+3600 {
				t.Errorf("stale entry duration = %d, want %d", e.Duration, 60+3600)
			}
			if e.EndTime.IsNone() {
				t.Error("stale entry must be closed with an EndTime")
			}
		case "fresh":
			if e.Status != tracker.StatusRunning {
				t.Errorf("fresh entry status = %s, want running", e.Status)
			}
		}
	}
}

func TestDurationMonotonicity(t *testing.T) {
	timer, repo, _, clock := newTestTimer(t)

	entry, err := timer.Start(tracker.None[string](), tracker.None[string](), "")
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	last := int64(0)
	check := func(step string) {
		doc, _ := repo.LoadData()
		for _, e := range doc.TimeEntries {
			if e.ID == entry.ID {
				if e.Duration < last {
					t.Fatalf("duration decreased at %s: %d -> %d", step, last, e.Duration)
				}
				last = e.Duration
			}
		}
	}

	clock.Advance(7 * time.Second)
	timer.Pause(entry.ID)
	check("pause")
	timer.Resume(entry.ID)
	check("resume")
	clock.Advance(2 * time.Second)
	timer.Pause(entry.ID)
	check("second pause")
	timer.Resume(entry.ID)
	clock.Advance(time.Second)
	timer.Stop(entry.ID)
	check("stop")
}

func TestElapsedDerivation(t *testing.T) {
	now := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	running := tracker.TimeEntry{
		StartTime: now.Add(-90 * time.Second),
		Duration:  10,
		Status:    tracker.StatusRunning,
	}
	if got := running.Elapsed(now); got != 100 {
		t.Errorf("running Elapsed() = %d, want 100", got)
	}

	paused := tracker.TimeEntry{
		StartTime: now.Add(-90 * time.Second),
		Duration:  10,
		Status:    tracker.StatusPaused,
	}
	if got := paused.Elapsed(now); got != 10 {
		t.Errorf("paused Elapsed() = %d, want 10 (open segment must not count)", got)
	}
}
