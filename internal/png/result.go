package png

import "sync"

// Result は一括圧縮ジョブの成果を表します。出力ファイルはジョブ記述子の
// 指すパスへその場で書き込まれるため、成果物としてはメタデータのみを持ちます。
type Result struct {
	JobID     string        `json:"jobId"`
	Operation OperationType `json:"operation"`
	Meta      *CompressMeta `json:"meta,omitempty"`

	jobDir      string
	cleanupOnce sync.Once
	cleanupErr  error
}

// Cleanup はスプールディレクトリを削除します。
func (r *Result) Cleanup() error {
	if r == nil {
		return nil
	}
	r.cleanupOnce.Do(func() {
		r.cleanupErr = removeDir(r.jobDir)
	})
	return r.cleanupErr
}

// CompressMeta は一括圧縮の集計メタデータです。Total は受理件数であり、
// Done + Failed と常に一致します。
type CompressMeta struct {
	Total  int `json:"total"`
	Done   int `json:"done"`
	Failed int `json:"failed"`
}
