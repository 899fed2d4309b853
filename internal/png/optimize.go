package png

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"time"
)

const (
	// oxipng のプリセットレベル。移植元の固定値をそのまま使います。
	optimizeLevel = 5
	// 1ファイルあたりの最適化タイムアウト。超過したファイルのみ失敗扱いとなり、
	// 他のジョブやディスパッチ全体には影響しません。
	perFileTimeout = 2 * time.Second
)

// Optimizer は外部のPNG最適化処理を抽象化します。戻り値は "done" / "error"
// のセンチネルのみで、エラーが例外として伝播することはありません。
type Optimizer interface {
	Optimize(ctx context.Context, inputPath, outputPath string) Status
}

// ExecOptimizer は oxipng バイナリを起動してロスレス圧縮を行います。
type ExecOptimizer struct {
	binPath string
}

// NewExecOptimizer は ExecOptimizer を作成します。
func NewExecOptimizer(binPath string) *ExecOptimizer {
	if binPath == "" {
		binPath = "oxipng"
	}
	return &ExecOptimizer{binPath: binPath}
}

// Optimize は inputPath のPNGを圧縮して outputPath に書き出します。
// 入出力パスが同一の場合は上書きになります。I/Oエラー、不正なPNG、
// タイムアウトはすべて StatusError に畳み込まれます。
func (o *ExecOptimizer) Optimize(ctx context.Context, inputPath, outputPath string) Status {
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithTimeout(ctx, perFileTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, o.binPath, oxipngArgs(inputPath, outputPath)...)
	var stderr bytes.Buffer
	cmd.Stdout = &stderr
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return StatusError
	}
	return StatusDone
}

func oxipngArgs(inputPath, outputPath string) []string {
	return []string{
		"-o", strconv.Itoa(optimizeLevel),
		"--force",
		"--out", outputPath,
		inputPath,
	}
}
