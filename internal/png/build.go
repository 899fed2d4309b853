package png

import "fmt"

// BuildJobs は未検証のレコード列を検証済みのジョブ列へ変換します。
// レコードの順序は保持されます。重複排除やパス正規化、ファイル存在確認は
// 行いません（存在しないファイルは実行時に失敗として扱われます）。
// 不正なレコードが1件でもあれば、ワーカーを起動する前にエラーで中断します。
func BuildJobs(records []RawRecord) ([]Job, error) {
	jobs := make([]Job, 0, len(records))
	for i, record := range records {
		input, err := stringField(record, i, "in")
		if err != nil {
			return nil, err
		}
		output, err := stringField(record, i, "out")
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, Job{Input: input, Output: output})
	}
	return jobs, nil
}

func stringField(record RawRecord, index int, key string) (string, error) {
	raw, ok := record[key]
	if !ok {
		return "", newError("MALFORMED_JOB", fmt.Sprintf("ジョブ %d に %s フィールドがありません。", index, key), nil)
	}
	value, ok := raw.(string)
	if !ok {
		return "", newError("MALFORMED_JOB", fmt.Sprintf("ジョブ %d の %s は文字列で指定してください (received: %T)。", index, key, raw), nil)
	}
	if value == "" {
		return "", newError("MALFORMED_JOB", fmt.Sprintf("ジョブ %d の %s が空です。", index, key), nil)
	}
	return value, nil
}
