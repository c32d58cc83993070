package file_splitter

import (
	"github.com/voxsplit/voxsplit-be/src/worker/internal/application/jobs/split/splitter"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/lib/cerr"
	"os"
	"path/filepath"
	"strings"
)

// engines nest their output under the destination dir in engine specific
// ways - spleeter adds <source basename>/, demucs adds <model>/<source basename>/.
// descend through single directory levels until the level that holds files.
const maxEngineDirDepth = 3

func locateEngineOutputDir(stemsOutputDir string) (string, error) {
	currentDir := stemsOutputDir

	for depth := 0; depth <= maxEngineDirDepth; depth++ {
		errctx := cerr.Field("current_dir", currentDir)

		entries, err := os.ReadDir(currentDir)
		if err != nil {
			return "", errctx.Wrap(err).Error("Failed to read the engine output directory")
		}

		if len(entries) == 0 {
			return "", errctx.Error("Engine output directory is empty")
		}

		hasFiles := false
		for _, entry := range entries {
			if !entry.IsDir() {
				hasFiles = true
				break
			}
		}

		if hasFiles {
			return currentDir, nil
		}

		if len(entries) > 1 {
			return "", errctx.Error("Engine output directory branches into multiple directories")
		}

		currentDir = filepath.Join(currentDir, entries[0].Name())
	}

	return "", cerr.Field("stems_output_dir", stemsOutputDir).
		Error("Engine output directory is nested too deeply")
}

func collectStemFilePaths(dir string) (splitter.StemFilePaths, error) {
	errctx := cerr.Field("dir", dir)

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errctx.Wrap(err).Error("Error reading output directory")
	}

	if len(dirEntries) == 0 {
		return nil, errctx.Error("No files in output directory")
	}

	outputs := splitter.StemFilePaths{}

	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() {
			continue
		}

		fileName := dirEntry.Name()
		extension := filepath.Ext(fileName)
		stemName := strings.TrimSuffix(fileName, extension)
		filePath := filepath.Join(dir, fileName)

		outputs[stemName] = filePath
	}

	return outputs, nil
}
