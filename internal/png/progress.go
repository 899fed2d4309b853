package png

// ProgressReporter は進捗更新用コールバックです。粒度はステージ単位で、
// ファイルごとの進捗は報告しません。
type ProgressReporter func(stage string, percent int)

func reportProgress(cb ProgressReporter, stage string, percent int) {
	if cb == nil {
		return
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	cb(stage, percent)
}
