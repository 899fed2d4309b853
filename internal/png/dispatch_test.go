package png

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
)

type stubOptimizer struct {
	mu      sync.Mutex
	calls   []string
	fail    map[string]bool
	panicOn string
}

func (s *stubOptimizer) Optimize(ctx context.Context, inputPath, outputPath string) Status {
	if s.panicOn != "" && inputPath == s.panicOn {
		panic("optimizer exploded")
	}
	s.mu.Lock()
	s.calls = append(s.calls, inputPath)
	s.mu.Unlock()
	if s.fail[inputPath] {
		return StatusError
	}
	return StatusDone
}

func (s *stubOptimizer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func makeJobs(n int) []Job {
	jobs := make([]Job, n)
	for i := range jobs {
		jobs[i] = Job{
			Input:  fmt.Sprintf("in-%03d.png", i),
			Output: fmt.Sprintf("out-%03d.png", i),
		}
	}
	return jobs
}

func TestDispatchReturnsCountRegardlessOfFailures(t *testing.T) {
	opt := &stubOptimizer{fail: map[string]bool{
		"in-001.png": true,
		"in-003.png": true,
	}}
	d := NewDispatcher(8, opt)

	count, err := d.Dispatch(context.Background(), makeJobs(5))
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if count != 5 {
		t.Fatalf("count = %d, want 5", count)
	}
	if opt.callCount() != 5 {
		t.Fatalf("optimizer called %d times, want 5", opt.callCount())
	}
}

func TestDispatchEmptyBatch(t *testing.T) {
	opt := &stubOptimizer{}
	d := NewDispatcher(8, opt)

	count, err := d.Dispatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}
	if opt.callCount() != 0 {
		t.Fatalf("optimizer called %d times, want 0", opt.callCount())
	}
}

func TestDispatchProcessesEveryJobExactlyOnce(t *testing.T) {
	opt := &stubOptimizer{}
	d := NewDispatcher(8, opt)

	jobs := makeJobs(20)
	if _, err := d.Dispatch(context.Background(), jobs); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	opt.mu.Lock()
	calls := append([]string(nil), opt.calls...)
	opt.mu.Unlock()
	sort.Strings(calls)

	if len(calls) != len(jobs) {
		t.Fatalf("optimizer called %d times, want %d", len(calls), len(jobs))
	}
	for i, job := range jobs {
		if calls[i] != job.Input {
			t.Fatalf("calls[%d] = %s, want %s", i, calls[i], job.Input)
		}
	}
}

func TestDispatchDetailedReport(t *testing.T) {
	opt := &stubOptimizer{fail: map[string]bool{"in-002.png": true}}
	d := NewDispatcher(4, opt)

	jobs := makeJobs(4)
	report, err := d.DispatchDetailed(context.Background(), jobs)
	if err != nil {
		t.Fatalf("DispatchDetailed returned error: %v", err)
	}

	if report.Total != 4 || report.Done != 3 || report.Failed != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(report.Statuses) != 4 {
		t.Fatalf("statuses length = %d, want 4", len(report.Statuses))
	}
	for i, st := range report.Statuses {
		if st.Job != jobs[i] {
			t.Fatalf("statuses[%d].Job = %+v, want %+v", i, st.Job, jobs[i])
		}
		want := StatusDone
		if st.Job.Input == "in-002.png" {
			want = StatusError
		}
		if st.Status != want {
			t.Fatalf("statuses[%d].Status = %s, want %s", i, st.Status, want)
		}
	}
}

func TestDispatchPanicPropagates(t *testing.T) {
	opt := &stubOptimizer{panicOn: "in-001.png"}
	d := NewDispatcher(2, opt)

	_, err := d.Dispatch(context.Background(), makeJobs(3))
	if err == nil {
		t.Fatal("expected error from panicking worker")
	}
	if !strings.Contains(err.Error(), "panicked") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDispatchNilOptimizer(t *testing.T) {
	d := &Dispatcher{workerHint: 4}
	if _, err := d.DispatchDetailed(context.Background(), makeJobs(1)); err == nil {
		t.Fatal("expected error for nil optimizer")
	}
}

func TestWorkerCount(t *testing.T) {
	cases := []struct {
		hint, jobs, want int
	}{
		{hint: 8, jobs: 3, want: 8},
		{hint: 8, jobs: 20, want: 20},
		{hint: 8, jobs: 8, want: 8},
		{hint: 1, jobs: 1, want: 1},
		{hint: 4, jobs: 0, want: 4},
		{hint: 0, jobs: 5, want: 5},
	}
	for _, tc := range cases {
		if got := workerCount(tc.hint, tc.jobs); got != tc.want {
			t.Fatalf("workerCount(%d, %d) = %d, want %d", tc.hint, tc.jobs, got, tc.want)
		}
	}
}

func TestChunkSizeFor(t *testing.T) {
	cases := []struct {
		jobs, workers, want int
	}{
		{jobs: 0, workers: 8, want: 0},
		{jobs: 2, workers: 8, want: 1},
		{jobs: 20, workers: 20, want: 1},
		{jobs: 10, workers: 3, want: 4},
	}
	for _, tc := range cases {
		if got := chunkSizeFor(tc.jobs, tc.workers); got != tc.want {
			t.Fatalf("chunkSizeFor(%d, %d) = %d, want %d", tc.jobs, tc.workers, got, tc.want)
		}
	}
}

func TestChunkAtPartitionsBatchCompletely(t *testing.T) {
	for _, n := range []int{0, 1, 2, 5, 8, 20, 33} {
		for _, hint := range []int{1, 2, 8} {
			jobs := makeJobs(n)
			workers := workerCount(hint, n)
			chunkSize := chunkSizeFor(n, workers)

			var rebuilt []Job
			for i := 0; i < workers; i++ {
				rebuilt = append(rebuilt, chunkAt(jobs, i, chunkSize)...)
			}

			if len(rebuilt) != n {
				t.Fatalf("n=%d hint=%d: rebuilt %d jobs, want %d", n, hint, len(rebuilt), n)
			}
			for i := range jobs {
				if rebuilt[i] != jobs[i] {
					t.Fatalf("n=%d hint=%d: rebuilt[%d] = %+v, want %+v", n, hint, i, rebuilt[i], jobs[i])
				}
			}
		}
	}
}

// ヒント8・ジョブ2件の場合、ワーカー0と1が1件ずつ処理し、残り6ワーカーは
// 空の割り当てを受け取る。
func TestDispatchTwoJobsWithLargerHint(t *testing.T) {
	opt := &stubOptimizer{}
	d := NewDispatcher(8, opt)

	jobs := []Job{
		{Input: "a.png", Output: "a.png"},
		{Input: "b.png", Output: "b.png"},
	}
	count, err := d.Dispatch(context.Background(), jobs)
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
	if workerCount(8, len(jobs)) != 8 {
		t.Fatalf("workerCount = %d, want 8", workerCount(8, len(jobs)))
	}
	if opt.callCount() != 2 {
		t.Fatalf("optimizer called %d times, want 2", opt.callCount())
	}
}

func TestDispatchErrorIsNotAPIError(t *testing.T) {
	opt := &stubOptimizer{panicOn: "in-000.png"}
	d := NewDispatcher(1, opt)

	_, err := d.Dispatch(context.Background(), makeJobs(1))
	var apiErr *Error
	if errors.As(err, &apiErr) {
		t.Fatalf("worker panic should not map to an API error: %v", err)
	}
}
