package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arnavshah/labour-scheduler/pkg/config"
	"github.com/arnavshah/labour-scheduler/pkg/labour"
	"github.com/rs/zerolog"
)

type fakeScheduler struct {
	specs   []string
	fns     []func()
	started bool
	stopped bool
	reject  string
}

func (f *fakeScheduler) Schedule(spec string, fn func()) error {
	if spec == f.reject {
		return errors.New("bad spec")
	}
	f.specs = append(f.specs, spec)
	f.fns = append(f.fns, fn)
	return nil
}

func (f *fakeScheduler) Start() { f.started = true }

func (f *fakeScheduler) Stop() context.Context {
	f.stopped = true
	return context.Background()
}

func TestDefinitions_UseConfiguredSchedules(t *testing.T) {
	svc := labour.New(nil)
	defs := Definitions(config.DefaultSchedules, svc)

	want := map[string]string{
		"upcoming_tasks":   "0 * * * *",
		"labor_prediction": "0 6 * * *",
		"overtime_audit":   "0 17 * * *",
	}
	if len(defs) != len(want) {
		t.Fatalf("Expected %d definitions, got %d", len(want), len(defs))
	}
	for _, d := range defs {
		if want[d.Name] != d.Spec {
			t.Errorf("%s: expected spec %q, got %q", d.Name, want[d.Name], d.Spec)
		}
		if d.Run == nil {
			t.Errorf("%s: missing run func", d.Name)
		}
	}
}

func TestRunner_RegisterAndFire(t *testing.T) {
	sched := &fakeScheduler{}
	runner := NewRunner(sched, zerolog.Nop(), time.Second)

	calls := 0
	var deadline bool
	def := Definition{Name: "probe", Spec: "@every 1m", Run: func(ctx context.Context) (*labour.ScanReport, error) {
		calls++
		_, deadline = ctx.Deadline()
		return &labour.ScanReport{Scan: "probe", Processed: 1}, nil
	}}
	if err := runner.Register(def); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if len(sched.fns) != 1 || sched.specs[0] != "@every 1m" {
		t.Fatalf("Expected one scheduled trigger, got %v", sched.specs)
	}

	sched.fns[0]()
	sched.fns[0]()
	if calls != 2 {
		t.Errorf("Expected 2 runs, got %d", calls)
	}
	if !deadline {
		t.Errorf("Expected runs to be time-boxed")
	}

	runner.Start()
	runner.Stop(context.Background())
	if !sched.started || !sched.stopped {
		t.Errorf("Expected scheduler to be started and stopped")
	}
}

func TestRunner_RegisterRejectsBadSpec(t *testing.T) {
	sched := &fakeScheduler{reject: "nonsense"}
	runner := NewRunner(sched, zerolog.Nop(), 0)

	err := runner.Register(Definition{Name: "broken", Spec: "nonsense", Run: func(context.Context) (*labour.ScanReport, error) {
		return nil, nil
	}})
	if err == nil {
		t.Fatal("Expected error for a bad spec")
	}
}

func TestCronScheduler_AcceptsIntervalsAndCron(t *testing.T) {
	s := NewCron(time.UTC, zerolog.Nop())
	for _, spec := range []string{"@every 30s", "0 6 * * *", config.DefaultSchedules.Upcoming} {
		if err := s.Schedule(spec, func() {}); err != nil {
			t.Errorf("Expected %q to be accepted, got %v", spec, err)
		}
	}
	if err := s.Schedule("not a spec", func() {}); err == nil {
		t.Error("Expected invalid spec to be rejected")
	}
}

func TestRunner_ErrorIsLoggedNotPanicked(t *testing.T) {
	runner := NewRunner(&fakeScheduler{}, zerolog.Nop(), 0)
	runner.RunOnce(context.Background(), Definition{Name: "failing", Run: func(context.Context) (*labour.ScanReport, error) {
		return nil, errors.New("store down")
	}})
}
