package dummy

import (
	"github.com/cockroachdb/errors"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/application/executor"
	"os"
	"path/filepath"
	"strings"
)

var _ executor.Executor = &DemucsExecutor{}
var _ executor.Command = &DemucsCommand{}

// DemucsExecutor stands in for the demucs binary. Its output nests a level
// deeper than spleeter's, <dest>/<model>/<source basename>/, and the
// non-vocal stem comes out as no_vocals in two-stem mode.
type DemucsExecutor struct{}

func NewDummyDemucsExecutor() *DemucsExecutor {
	return &DemucsExecutor{}
}

func (d *DemucsExecutor) Command(name string, arg ...string) executor.Command {
	return &DemucsCommand{args: arg}
}

type DemucsCommand struct {
	args []string
}

func (d *DemucsCommand) SetDir(dir string) {}

func (d *DemucsCommand) CombinedOutput() ([]byte, error) {
	sourcePath, destPath, err := d.parseArgs()
	if err != nil {
		return []byte(err.Error()), err
	}

	contents, err := os.ReadFile(sourcePath)
	if err != nil {
		return []byte("failed to read the source file"), err
	}

	if len(contents) == 0 {
		return []byte("the source file holds no audio data"), errors.New("demucs exited with status 1")
	}

	baseName := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	engineOutputDir := filepath.Join(destPath, "htdemucs", baseName)
	if err := os.MkdirAll(engineOutputDir, os.ModePerm); err != nil {
		return []byte("failed to create the output dir"), err
	}

	for _, stem := range []string{"vocals", "no_vocals"} {
		stemContents := append([]byte{}, contents...)
		stemContents = append(stemContents, []byte("-"+stem)...)

		stemPath := filepath.Join(engineOutputDir, stem+".mp3")
		if err := os.WriteFile(stemPath, stemContents, os.ModePerm); err != nil {
			return []byte("failed to write a stem file"), err
		}
	}

	return []byte("separation done"), nil
}

func (d *DemucsCommand) parseArgs() (string, string, error) {
	if len(d.args) == 0 {
		return "", "", errors.New("no args provided")
	}

	destPath := ""
	for i, arg := range d.args {
		if arg == "-o" && i+1 < len(d.args) {
			destPath = d.args[i+1]
		}
	}

	if destPath == "" {
		return "", "", errors.New("no output dir in args")
	}

	sourcePath := d.args[len(d.args)-1]
	return sourcePath, destPath, nil
}
