package png

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/png-press/internal/config"
)

// Service はPNG一括圧縮のユースケースをまとめた構造体です。
type Service struct {
	cfg        *config.Config
	dispatcher *Dispatcher
	now        func() time.Time
}

// NewService は Service を初期化します。ワーカー数ヒントは設定から
// 一度だけ取り込み、以降の呼び出しで環境変数を参照することはありません。
func NewService(cfg *config.Config) *Service {
	return &Service{
		cfg:        cfg,
		dispatcher: NewDispatcher(cfg.CompressThreads, NewExecOptimizer(cfg.OxipngPath)),
		now:        time.Now,
	}
}

// Compress は未検証のレコード列を受け取り、同期的に一括圧縮して
// 受理したジョブ件数を返します。ホストから呼び出される単一のエントリー
// ポイントに相当します。
func (s *Service) Compress(ctx context.Context, records []RawRecord) (int, error) {
	jobs, err := BuildJobs(records)
	if err != nil {
		return 0, err
	}
	return s.dispatcher.Dispatch(ctx, jobs)
}

// CompressDetailed は Compress と同じ処理を行い、ジョブごとの成否を
// 含む Report を返します。
func (s *Service) CompressDetailed(ctx context.Context, records []RawRecord) (*Report, error) {
	jobs, err := BuildJobs(records)
	if err != nil {
		return nil, err
	}
	return s.dispatcher.DispatchDetailed(ctx, jobs)
}

// PrepareCompressJob は非同期実行用のジョブを準備します。検証済みの
// ジョブ列をスプールディレクトリ配下のマニフェストとして保存し、
// 後からワーカーが再読込できるようにします。
func (s *Service) PrepareCompressJob(ctx context.Context, records []RawRecord) (*JobManifest, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	jobs, err := BuildJobs(records)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, newError("INVALID_INPUT", "圧縮するジョブを1件以上指定してください。", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ws, err := s.createWorkspace()
	if err != nil {
		return nil, err
	}

	manifest := &JobManifest{
		JobID:     ws.jobID,
		Operation: OperationCompress,
		Jobs:      jobs,
		CreatedAt: s.now().UTC(),
	}
	if err := writeManifest(ws.dir, manifest); err != nil {
		_ = removeDir(ws.dir)
		return nil, fmt.Errorf("ジョブマニフェストの保存に失敗しました: %w", err)
	}

	return manifest, nil
}

// RunJob はジョブIDに対応する一括圧縮を実行します。
func (s *Service) RunJob(ctx context.Context, jobID string, reporter ProgressReporter) (*Result, error) {
	if jobID == "" {
		return nil, fmt.Errorf("jobID is required")
	}
	ws := s.workspaceFor(jobID)
	manifest, err := loadManifest(ws.dir)
	if err != nil {
		_ = removeDir(ws.dir)
		return nil, err
	}
	if manifest.Operation != OperationCompress {
		_ = removeDir(ws.dir)
		return nil, fmt.Errorf("unsupported operation: %s", manifest.Operation)
	}
	if len(manifest.Jobs) == 0 {
		_ = removeDir(ws.dir)
		return nil, fmt.Errorf("manifest has no jobs")
	}

	reportProgress(reporter, "process", 10)

	report, err := s.dispatcher.DispatchDetailed(ctx, manifest.Jobs)
	if err != nil {
		if cleanupErr := removeDir(ws.dir); cleanupErr != nil {
			err = fmt.Errorf("%w (ワークスペースの削除にも失敗しました: %v)", err, cleanupErr)
		}
		return nil, err
	}

	reportProgress(reporter, "completed", 100)

	return &Result{
		JobID:     jobID,
		Operation: OperationCompress,
		Meta: &CompressMeta{
			Total:  report.Total,
			Done:   report.Done,
			Failed: report.Failed,
		},
		jobDir: ws.dir,
	}, nil
}

// DiscardJob はジョブのスプールを破棄します。キュー投入に失敗した場合の
// 後始末に使います。
func (s *Service) DiscardJob(jobID string) error {
	if jobID == "" {
		return fmt.Errorf("jobID is required")
	}
	return removeDir(s.workspaceFor(jobID).dir)
}

func (s *Service) createWorkspace() (workspace, error) {
	jobID := uuid.NewString()
	ws := s.workspaceFor(jobID)
	if err := os.MkdirAll(ws.dir, 0o750); err != nil {
		return workspace{}, fmt.Errorf("ワークスペースの作成に失敗しました: %w", err)
	}
	return ws, nil
}

func (s *Service) workspaceFor(jobID string) workspace {
	return workspace{
		jobID: jobID,
		dir:   filepath.Join(s.cfg.SpoolDir, jobID),
	}
}
