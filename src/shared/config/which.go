package config

import (
	"fmt"
	"os/exec"
)

// FindBin resolves an engine binary on PATH and panics if it's absent.
// Engine paths are resolved once at startup so a missing install fails the
// process instead of the first job.
func FindBin(bin string) string {
	binPath, err := exec.LookPath(bin)
	if err != nil {
		panic(fmt.Sprintf("Failed to find %s on PATH: %s", bin, err))
	}

	return binPath
}

func SpleeterPath() string {
	return FindBin("spleeter")
}

func DemucsPath() string {
	return FindBin("demucs")
}
