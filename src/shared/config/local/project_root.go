package local

import (
	"runtime"
	"strings"
)

// selfPath must track this file's location in the repo. ProjectRoot works
// by chopping it off the path that runtime.Caller reports.
const selfPath = "/src/shared/config/local/project_root.go"

func ProjectRoot() string {
	_, filePath, _, ok := runtime.Caller(0)
	if !ok {
		panic("Failed to call runtime.Caller")
	}

	if !strings.HasSuffix(filePath, selfPath) {
		panic("project_root.go moved without updating selfPath")
	}

	return strings.TrimSuffix(filePath, selfPath)
}
