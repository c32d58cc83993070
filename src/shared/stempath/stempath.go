package stempath

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/domains"
	"github.com/voxsplit/voxsplit-be/src/shared/lib/errors/mark"
	"path"
	"path/filepath"
	"strings"
)

// DownloadPrefix is the leading segment of every public download path.
// Download paths are service relative, e.g. output/<job-id>/vocals.mp3,
// regardless of where the output directory physically lives.
const DownloadPrefix = "output"

const archiveSuffix = "_stems.zip"

var EscapesRootMark = domains.New("path_escapes_root")

type Generator struct {
	outputRoot string
}

func NewGenerator(outputDirPath string) (Generator, error) {
	absRoot, err := filepath.Abs(outputDirPath)
	if err != nil {
		return Generator{}, errors.Wrap(err, "Failed to resolve the output dir to an absolute path")
	}

	return Generator{
		outputRoot: absRoot,
	}, nil
}

func (g Generator) OutputRoot() string {
	return g.outputRoot
}

// JobDir is the absolute directory that holds all output files of one job.
func (g Generator) JobDir(jobID string) string {
	return filepath.Join(g.outputRoot, jobID)
}

// RelStemPath is the service relative download path for one stem file.
func RelStemPath(jobID string, fileName string) string {
	return path.Join(DownloadPrefix, jobID, fileName)
}

func (g Generator) ArchiveName(originalFilename string) string {
	baseName := strings.TrimSuffix(originalFilename, filepath.Ext(originalFilename))
	return baseName + archiveSuffix
}

func (g Generator) ArchivePath(jobID string, originalFilename string) string {
	return filepath.Join(g.JobDir(jobID), g.ArchiveName(originalFilename))
}

// Resolve turns a service relative download path into an absolute file path.
// Anything that doesn't land strictly inside the output directory comes back
// with EscapesRootMark, whether or not the target exists.
func (g Generator) Resolve(relPath string) (string, error) {
	normalized := strings.ReplaceAll(relPath, "\\", "/")
	cleaned := path.Clean(normalized)

	if cleaned != DownloadPrefix && !strings.HasPrefix(cleaned, DownloadPrefix+"/") {
		return "", mark.Message(EscapesRootMark, "The download path must point inside the output directory")
	}

	remainder := strings.TrimPrefix(cleaned, DownloadPrefix)
	remainder = strings.TrimPrefix(remainder, "/")

	abs, err := filepath.Abs(filepath.Join(g.outputRoot, filepath.FromSlash(remainder)))
	if err != nil {
		return "", errors.Wrap(err, "Failed to resolve the download path to an absolute path")
	}

	if abs != g.outputRoot && !strings.HasPrefix(abs, g.outputRoot+string(filepath.Separator)) {
		return "", mark.Message(EscapesRootMark, "The download path escapes the output directory")
	}

	return abs, nil
}
