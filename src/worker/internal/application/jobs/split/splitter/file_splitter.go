package splitter

import (
	"context"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

// StemFilePaths maps a stem name to the file holding it. Engine adapters fill
// it with absolute paths using the engine's own stem names.
type StemFilePaths = map[string]string

type EngineType string

const (
	SpleeterEngine EngineType = "spleeter"
	DemucsEngine   EngineType = "demucs"
)

//counterfeiter:generate . FileSplitter
type FileSplitter interface {
	SplitFile(ctx context.Context, originalFilePath string, stemsOutputDir string) (StemFilePaths, error)
}
