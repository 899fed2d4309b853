package png

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// JobRunner はジョブを実行できるサービスが実装します。
type JobRunner interface {
	RunJob(ctx context.Context, jobID string, reporter ProgressReporter) (*Result, error)
	DiscardJob(jobID string) error
}

// CompressService は一括圧縮の同期実行とジョブ準備を提供します。
type CompressService interface {
	JobRunner
	CompressDetailed(ctx context.Context, records []RawRecord) (*Report, error)
	PrepareCompressJob(ctx context.Context, records []RawRecord) (*JobManifest, error)
}

// InspectService は入力ファイルの検査を提供します。
type InspectService interface {
	Inspect(ctx context.Context, path string) (*InspectResult, error)
}

// JobScheduler はジョブを非同期キューに投入するためのインターフェースです。
type JobScheduler interface {
	Schedule(ctx context.Context, op OperationType, jobID string) error
}

// HandlerOptions は同期/非同期切り替えのための設定です。
type HandlerOptions struct {
	Scheduler          JobScheduler
	AsyncThresholdJobs int
}

type compressRequest struct {
	Jobs []RawRecord `json:"jobs"`
}

type inspectRequest struct {
	Path string `json:"path"`
}

// CompressHandler は POST /api/png/compress のハンドラーを返します。
// 応答の count は受理したジョブ件数であり、個々の圧縮の成否には依存しません。
func CompressHandler(svc CompressService, opts HandlerOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req compressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "jobs を JSON で送信してください。例: {\"jobs\":[{\"in\":\"a.png\",\"out\":\"a.png\"}]}",
			})
			return
		}

		if shouldProcessAsync(len(req.Jobs), opts) {
			manifest, err := svc.PrepareCompressJob(c.Request.Context(), req.Jobs)
			if err != nil {
				respondWithError(c, err)
				return
			}
			if err := opts.Scheduler.Schedule(c.Request.Context(), manifest.Operation, manifest.JobID); err != nil {
				if cleanupErr := svc.DiscardJob(manifest.JobID); cleanupErr != nil {
					err = fmt.Errorf("%w (cleanup failed: %v)", err, cleanupErr)
				}
				respondWithError(c, err)
				return
			}
			c.JSON(http.StatusAccepted, gin.H{"jobId": manifest.JobID})
			return
		}

		report, err := svc.CompressDetailed(c.Request.Context(), req.Jobs)
		if err != nil {
			respondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"count": report.Total,
			"summary": gin.H{
				"done":   report.Done,
				"failed": report.Failed,
			},
		})
	}
}

// InspectHandler は POST /api/png/inspect のハンドラーを返します。
func InspectHandler(svc InspectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req inspectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "path を JSON で送信してください。",
			})
			return
		}

		result, err := svc.Inspect(c.Request.Context(), req.Path)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func shouldProcessAsync(jobCount int, opts HandlerOptions) bool {
	if opts.Scheduler == nil || opts.AsyncThresholdJobs <= 0 {
		return false
	}
	return jobCount > opts.AsyncThresholdJobs
}

func respondWithError(c *gin.Context, err error) {
	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
		status := http.StatusBadRequest
		if apiErr.Code == "FILE_NOT_FOUND" {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		})
	case errors.Is(err, context.Canceled):
		c.JSON(http.StatusRequestTimeout, gin.H{
			"code":    "REQUEST_CANCELED",
			"message": "リクエストがキャンセルされました。",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "サーバー内部でエラーが発生しました。",
		})
	}
}
