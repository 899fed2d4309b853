package png

import (
	"context"
	"fmt"
	"sync"
)

// JobStatus は1ジョブの実行結果です。
type JobStatus struct {
	Job    Job    `json:"job"`
	Status Status `json:"status"`
}

// Report はバッチ全体の集計結果です。Dispatch の戻り値（受理件数）を
// 変えずに、ジョブごとの成否を追加情報として公開します。
type Report struct {
	Total    int         `json:"total"`
	Done     int         `json:"done"`
	Failed   int         `json:"failed"`
	Statuses []JobStatus `json:"statuses"`
}

// Dispatcher はジョブ列を分割して並列実行します。
type Dispatcher struct {
	workerHint int
	optimizer  Optimizer
}

// NewDispatcher は Dispatcher を作成します。workerHint は設定から
// 起動時に一度だけ読み込んだ値を渡します（呼び出しごとの環境変数参照はしません）。
func NewDispatcher(workerHint int, optimizer Optimizer) *Dispatcher {
	if workerHint <= 0 {
		workerHint = 1
	}
	return &Dispatcher{
		workerHint: workerHint,
		optimizer:  optimizer,
	}
}

// Dispatch はジョブ列を並列に圧縮し、受理したジョブ件数を返します。
// 戻り値は個々の圧縮の成否に関わらず常に len(jobs) です（「この件数を
// 受け付けて処理した」ことを示す値であり、成功件数ではありません）。
// ワーカー内部の想定外の失敗（panic）のみ error として呼び出し側へ伝播します。
func (d *Dispatcher) Dispatch(ctx context.Context, jobs []Job) (int, error) {
	if _, err := d.DispatchDetailed(ctx, jobs); err != nil {
		return 0, err
	}
	return len(jobs), nil
}

// DispatchDetailed は Dispatch と同じ実行を行い、ジョブごとの成否を
// 含む Report を返します。
func (d *Dispatcher) DispatchDetailed(ctx context.Context, jobs []Job) (*Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if d.optimizer == nil {
		return nil, fmt.Errorf("optimizer is nil")
	}

	workers := workerCount(d.workerHint, len(jobs))
	chunkSize := chunkSizeFor(len(jobs), workers)

	// バッチは構築後に変更されないため、ワーカー間でロックなしに共有できる。
	// 各ワーカーは statuses の互いに素な区間にのみ書き込む。
	statuses := make([]Status, len(jobs))

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		fatal error
	)

	for i := 0; i < workers; i++ {
		chunk := chunkAt(jobs, i, chunkSize)
		wg.Add(1)
		go func(workerID, start int, chunk []Job) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					if fatal == nil {
						fatal = fmt.Errorf("worker %d panicked: %v", workerID, r)
					}
					mu.Unlock()
				}
			}()
			for j, job := range chunk {
				statuses[start+j] = d.optimizer.Optimize(ctx, job.Input, job.Output)
			}
		}(i, i*chunkSize, chunk)
	}

	wg.Wait()

	if fatal != nil {
		return nil, fatal
	}

	report := &Report{
		Total:    len(jobs),
		Statuses: make([]JobStatus, len(jobs)),
	}
	for i, job := range jobs {
		report.Statuses[i] = JobStatus{Job: job, Status: statuses[i]}
		if statuses[i] == StatusDone {
			report.Done++
		} else {
			report.Failed++
		}
	}
	return report, nil
}

// workerCount は実効ワーカー数を返します。移植元の挙動をそのまま
// 踏襲しており、ジョブ数がヒントを超える場合はワーカー数がジョブ数まで
// 引き上げられます（1ワーカー1ジョブになる）。ジョブ数がヒント未満の
// 場合はヒント数のワーカーが起動し、余ったワーカーは空の割り当てを受け取ります。
func workerCount(hint, jobCount int) int {
	if hint < 1 {
		hint = 1
	}
	if jobCount > hint {
		return jobCount
	}
	return hint
}

// chunkSizeFor は1ワーカーあたりのジョブ数（切り上げ）を返します。
func chunkSizeFor(jobCount, workers int) int {
	if jobCount == 0 || workers == 0 {
		return 0
	}
	return (jobCount + workers - 1) / workers
}

// chunkAt はワーカー index に割り当てる連続区間を返します。区間はバッチを
// 重複なく分割し、範囲外のワーカーには空の割り当てを返します。
func chunkAt(jobs []Job, index, chunkSize int) []Job {
	if chunkSize == 0 {
		return nil
	}
	start := index * chunkSize
	if start >= len(jobs) {
		return nil
	}
	end := start + chunkSize
	if end > len(jobs) {
		end = len(jobs)
	}
	return jobs[start:end]
}
