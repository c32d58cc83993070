package dummy

import (
	"context"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/application/jobs/split/splitter"
	"os"
	"path/filepath"
)

var _ splitter.FileSplitter = &FileSplitter{}

// FileSplitter writes a configurable set of stem files instead of running an
// engine, so tests can shape the engine output freely.
type FileSplitter struct {
	Unavailable bool

	// StemNames become <name>.mp3 files under the output dir, each holding
	// <source contents>-<name>.
	StemNames []string

	// ScatterStems writes every stem into its own subdirectory instead of a
	// single engine dir.
	ScatterStems bool
}

func NewDummyFileSplitter(stemNames ...string) *FileSplitter {
	return &FileSplitter{
		StemNames: stemNames,
	}
}

func (f *FileSplitter) SplitFile(_ context.Context, originalFilePath string, stemsOutputDir string) (splitter.StemFilePaths, error) {
	if f.Unavailable {
		return nil, NetworkFailure
	}

	contents, err := os.ReadFile(originalFilePath)
	if err != nil {
		return nil, err
	}

	outputs := splitter.StemFilePaths{}

	for _, stemName := range f.StemNames {
		stemDir := stemsOutputDir
		if f.ScatterStems {
			stemDir = filepath.Join(stemsOutputDir, stemName)
			if err := os.MkdirAll(stemDir, os.ModePerm); err != nil {
				return nil, err
			}
		}

		stemContents := append([]byte{}, contents...)
		stemContents = append(stemContents, []byte("-"+stemName)...)

		stemPath := filepath.Join(stemDir, stemName+".mp3")
		if err := os.WriteFile(stemPath, stemContents, os.ModePerm); err != nil {
			return nil, err
		}

		outputs[stemName] = stemPath
	}

	return outputs, nil
}
