package app

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

type fakeService struct {
	name     string
	startErr error
	stopErr  error
	exitNow  bool
	events   *[]string
	mu       *sync.Mutex
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	if s.exitNow {
		return s.startErr
	}
	<-ctx.Done()
	return nil
}

func (s *fakeService) Stop(ctx context.Context) error {
	s.mu.Lock()
	*s.events = append(*s.events, "stop:"+s.name)
	s.mu.Unlock()
	return s.stopErr
}

func newFakes(names ...string) ([]*fakeService, *[]string) {
	events := []string{}
	mu := &sync.Mutex{}
	fakes := make([]*fakeService, 0, len(names))
	for _, name := range names {
		fakes = append(fakes, &fakeService{name: name, events: &events, mu: mu})
	}
	return fakes, &events
}

func TestParseMode(t *testing.T) {
	cases := map[string]string{"": ModeAll, " API ": ModeAPI, "worker": ModeWorker, "all": ModeAll}
	for raw, want := range cases {
		got, err := ParseMode(raw)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %q, %v; want %q", raw, got, err, want)
		}
	}
	if _, err := ParseMode("cron"); err == nil {
		t.Fatalf("expected unknown mode error")
	}
}

func TestRunnerStopsInReverseOrderOnServiceExit(t *testing.T) {
	fakes, events := newFakes("http", "worker", "scheduler")
	fakes[1].exitNow = true
	fakes[1].startErr = errors.New("redis down")

	runner := NewRunner(fakes[0], nil, fakes[1], fakes[2])
	if got := runner.Names(); !reflect.DeepEqual(got, []string{"http", "worker", "scheduler"}) {
		t.Fatalf("unexpected names: %v", got)
	}
	err := runner.Run(context.Background(), time.Second, nil)
	if err == nil || !errors.Is(err, fakes[1].startErr) {
		t.Fatalf("expected worker exit error, got %v", err)
	}
	want := []string{"stop:scheduler", "stop:worker", "stop:http"}
	if !reflect.DeepEqual(*events, want) {
		t.Fatalf("unexpected stop order: %v", *events)
	}
}

func TestRunnerCancelReturnsStopErrors(t *testing.T) {
	fakes, _ := newFakes("http", "worker")
	fakes[0].stopErr = errors.New("shutdown timeout")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewRunner(fakes[0], fakes[1]).Run(ctx, time.Second, nil)
	if err == nil || !errors.Is(err, fakes[0].stopErr) {
		t.Fatalf("expected stop error after cancel, got %v", err)
	}

	fakes, _ = newFakes("http")
	ctx, cancel = context.WithCancel(context.Background())
	cancel()
	if err := NewRunner(fakes[0]).Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("clean cancel should return nil, got %v", err)
	}
}

func TestRunnerWithoutServices(t *testing.T) {
	if err := NewRunner(nil).Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("expected error for empty runner")
	}
	if err := RunWithOptions(nil, Options{}); err == nil {
		t.Fatalf("expected error for nil runner")
	}
}
