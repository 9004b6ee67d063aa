package polish

import (
	"context"
	"sync"
	"time"

	"github.com/imamik/fittings/internal/config"
)

// fakeUpdater records calls. Unset funcs succeed and report a change.
type fakeUpdater struct {
	mu    sync.Mutex
	calls []string

	ResizeFunc           func(cpu, memory *int) (bool, error)
	AddStorageFunc       func(disk config.DiskSpec) error
	EnableMonitoringFunc func(level string) (bool, error)
	AttachToDomainFunc   func(domain string) (bool, error)
	DisksFunc            func() ([]config.DiskSpec, error)
}

func (f *fakeUpdater) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeUpdater) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeUpdater) Resize(_ context.Context, node Node, cpu, memory *int) (bool, error) {
	f.record(node.Name + ":resize")
	if f.ResizeFunc != nil {
		return f.ResizeFunc(cpu, memory)
	}
	return true, nil
}

func (f *fakeUpdater) AddStorage(_ context.Context, node Node, disk config.DiskSpec) error {
	f.record(node.Name + ":disk " + disk.String())
	if f.AddStorageFunc != nil {
		return f.AddStorageFunc(disk)
	}
	return nil
}

func (f *fakeUpdater) EnableMonitoring(_ context.Context, node Node, level string) (bool, error) {
	f.record(node.Name + ":monitoring " + level)
	if f.EnableMonitoringFunc != nil {
		return f.EnableMonitoringFunc(level)
	}
	return true, nil
}

func (f *fakeUpdater) AttachToDomain(_ context.Context, node Node, domain string) (bool, error) {
	f.record(node.Name + ":glue " + domain)
	if f.AttachToDomainFunc != nil {
		return f.AttachToDomainFunc(domain)
	}
	return true, nil
}

func (f *fakeUpdater) Disks(_ context.Context, node Node) ([]config.DiskSpec, error) {
	f.record(node.Name + ":disks")
	if f.DisksFunc != nil {
		return f.DisksFunc()
	}
	return nil, nil
}

// fakeSleeper records waits instead of sleeping.
type fakeSleeper struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *fakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waits = append(s.waits, d)
	return nil
}

func (s *fakeSleeper) Total() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total time.Duration
	for _, w := range s.waits {
		total += w
	}
	return total
}

func testPolicy(s *fakeSleeper) RetryPolicy {
	return RetryPolicy{Interval: 10 * time.Second, MaxElapsed: 30 * time.Minute, Sleep: s.Sleep}
}
