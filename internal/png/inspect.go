package png

import (
	"context"
	"os"

	"github.com/gabriel-vasile/mimetype"
)

// InspectResult は入力ファイルの基本メタデータを表します。
type InspectResult struct {
	Path  string `json:"path"`
	Size  int64  `json:"size"`
	MIME  string `json:"mime"`
	IsPNG bool   `json:"isPng"`
}

// Inspect は指定パスのファイルサイズとMIMEタイプを返します。圧縮の
// 事前確認用であり、ディスパッチ自体はここでの検査結果に依存しません。
func (s *Service) Inspect(ctx context.Context, path string) (*InspectResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if path == "" {
		return nil, newError("INVALID_INPUT", "検査するファイルパスを指定してください。", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, newError("FILE_NOT_FOUND", "指定されたファイルが見つかりません。", err)
	}
	if info.IsDir() {
		return nil, newError("INVALID_INPUT", "ディレクトリは検査できません。", nil)
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, newError("FILE_NOT_FOUND", "ファイルの読み込みに失敗しました。", err)
	}

	return &InspectResult{
		Path:  path,
		Size:  info.Size(),
		MIME:  mt.String(),
		IsPNG: mt.Is("image/png"),
	}, nil
}
