package dummy

import (
	"github.com/cockroachdb/errors"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/application/executor"
	"os"
	"path/filepath"
	"strings"
)

var _ executor.Executor = &SpleeterExecutor{}
var _ executor.Command = &SpleeterCommand{}

// SpleeterExecutor stands in for the spleeter binary. It reproduces the
// engine's output layout, <dest>/<source basename>/, and writes stem files
// whose contents are derived from the source so tests can tell which upload
// they came from. An empty source fails the run the way spleeter fails on
// unreadable audio.
type SpleeterExecutor struct{}

func NewDummySpleeterExecutor() *SpleeterExecutor {
	return &SpleeterExecutor{}
}

func (s *SpleeterExecutor) Command(name string, arg ...string) executor.Command {
	return &SpleeterCommand{args: arg}
}

type SpleeterCommand struct {
	args []string
}

func (s *SpleeterCommand) SetDir(dir string) {}

func (s *SpleeterCommand) CombinedOutput() ([]byte, error) {
	sourcePath, destPath, err := s.parseArgs()
	if err != nil {
		return []byte(err.Error()), err
	}

	contents, err := os.ReadFile(sourcePath)
	if err != nil {
		return []byte("failed to read the source file"), err
	}

	if len(contents) == 0 {
		return []byte("the source file holds no audio data"), errors.New("spleeter exited with status 1")
	}

	baseName := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	engineOutputDir := filepath.Join(destPath, baseName)
	if err := os.MkdirAll(engineOutputDir, os.ModePerm); err != nil {
		return []byte("failed to create the output dir"), err
	}

	for _, stem := range []string{"vocals", "accompaniment"} {
		stemContents := append([]byte{}, contents...)
		stemContents = append(stemContents, []byte("-"+stem)...)

		stemPath := filepath.Join(engineOutputDir, stem+".mp3")
		if err := os.WriteFile(stemPath, stemContents, os.ModePerm); err != nil {
			return []byte("failed to write a stem file"), err
		}
	}

	return []byte("separation done"), nil
}

func (s *SpleeterCommand) parseArgs() (string, string, error) {
	if len(s.args) == 0 {
		return "", "", errors.New("no args provided")
	}

	destPath := ""
	for i, arg := range s.args {
		if arg == "-o" && i+1 < len(s.args) {
			destPath = s.args[i+1]
		}
	}

	if destPath == "" {
		return "", "", errors.New("no output dir in args")
	}

	sourcePath := s.args[len(s.args)-1]
	return sourcePath, destPath, nil
}
