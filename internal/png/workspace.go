package png

import (
	"os"
	"path/filepath"
	"strings"
)

type workspace struct {
	jobID string
	dir   string
}

func (w workspace) manifestPath() string {
	return filepath.Join(w.dir, manifestFilename)
}

func removeDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return nil
	}
	return os.RemoveAll(dir)
}
