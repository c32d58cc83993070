package testing

import (
	. "github.com/onsi/gomega"
	"github.com/voxsplit/voxsplit-be/src/shared/config"
	"os"
	"path"
)

// MakeTestDir creates a throwaway root dir to hold a test run's file layout:
// the sqlite DB, uploads, split scratch space, and stem output.
func MakeTestDir() string {
	return ExpectSuccess(os.MkdirTemp("", "voxsplit-test-"))
}

func CleanupTestDir(testDirPath string) {
	Expect(os.RemoveAll(testDirPath)).To(Succeed())
}

func SQLiteJobStoreConfig(testDirPath string) config.LocalSQLite {
	return config.LocalSQLite{
		DBPath: path.Join(testDirPath, "jobs-test.db"),
	}
}

func UploadsDirPath(testDirPath string) string {
	return path.Join(testDirPath, "uploads")
}

func OutputDirPath(testDirPath string) string {
	return path.Join(testDirPath, "output")
}

func SplitWorkingDirPath(testDirPath string) string {
	return path.Join(testDirPath, "split")
}
