// Package png はPNG一括圧縮機能を提供します。
package png

import "fmt"

// OperationType は処理の種別を表します。現状は圧縮のみです。
type OperationType string

const (
	OperationCompress OperationType = "compress"
)

// Status は1ファイルの圧縮結果を表す文字列センチネルです。
type Status string

const (
	StatusDone  Status = "done"
	StatusError Status = "error"
)

// RawRecord は呼び出し側から渡される未検証のジョブレコードです。
// JSONデコード直後の値をそのまま受け取るため、フィールドの型は確定していません。
type RawRecord map[string]any

// Job は1ファイル分の圧縮ジョブを表します。構築後は変更されません。
type Job struct {
	Input  string `json:"in"`
	Output string `json:"out"`
}

// Error はAPI応答に変換可能なエラー情報です。
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
