package png

import (
	"errors"
	"testing"
)

func TestBuildJobsPreservesOrder(t *testing.T) {
	records := []RawRecord{
		{"in": "c.png", "out": "c-min.png"},
		{"in": "a.png", "out": "a-min.png"},
		{"in": "b.png", "out": "b.png"},
	}

	jobs, err := BuildJobs(records)
	if err != nil {
		t.Fatalf("BuildJobs returned error: %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("jobs length = %d, want 3", len(jobs))
	}
	want := []Job{
		{Input: "c.png", Output: "c-min.png"},
		{Input: "a.png", Output: "a-min.png"},
		{Input: "b.png", Output: "b.png"},
	}
	for i := range want {
		if jobs[i] != want[i] {
			t.Fatalf("jobs[%d] = %+v, want %+v", i, jobs[i], want[i])
		}
	}
}

func TestBuildJobsEmpty(t *testing.T) {
	jobs, err := BuildJobs(nil)
	if err != nil {
		t.Fatalf("BuildJobs returned error: %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("jobs length = %d, want 0", len(jobs))
	}
}

func TestBuildJobsMalformed(t *testing.T) {
	cases := []struct {
		name   string
		record RawRecord
	}{
		{name: "missing in", record: RawRecord{"out": "x.png"}},
		{name: "missing out", record: RawRecord{"in": "x.png"}},
		{name: "non-string in", record: RawRecord{"in": float64(123), "out": "x.png"}},
		{name: "non-string out", record: RawRecord{"in": "x.png", "out": true}},
		{name: "empty in", record: RawRecord{"in": "", "out": "x.png"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildJobs([]RawRecord{tc.record})
			if err == nil {
				t.Fatal("expected error")
			}
			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("unexpected error type: %v", err)
			}
			if apiErr.Code != "MALFORMED_JOB" {
				t.Fatalf("code = %s, want MALFORMED_JOB", apiErr.Code)
			}
		})
	}
}

// 不正なレコードが混ざっている場合は有効なレコードも含めて全体が失敗する。
func TestBuildJobsFailsWholeBatch(t *testing.T) {
	records := []RawRecord{
		{"in": "a.png", "out": "a.png"},
		{"in": 42, "out": "b.png"},
	}
	jobs, err := BuildJobs(records)
	if err == nil {
		t.Fatal("expected error")
	}
	if jobs != nil {
		t.Fatalf("jobs = %+v, want nil", jobs)
	}
}
