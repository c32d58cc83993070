package working_dir

import (
	"github.com/cockroachdb/errors"
	"os"
	"path/filepath"
)

type WorkingDir struct {
	root string
}

func NewWorkingDir(workingDirPath string) (WorkingDir, error) {
	absPath, err := filepath.Abs(workingDirPath)
	if err != nil {
		return WorkingDir{}, errors.Wrap(err, "Failed to convert working dir path to absolute format")
	}

	workingDir := WorkingDir{root: absPath}

	if err := os.MkdirAll(workingDir.TempDir(), os.ModePerm); err != nil {
		return WorkingDir{}, errors.Wrap(err, "Failed to create the working dir")
	}

	return workingDir, nil
}

func (w WorkingDir) Root() string {
	return w.root
}

func (w WorkingDir) TempDir() string {
	return filepath.Join(w.root, "tmp")
}
