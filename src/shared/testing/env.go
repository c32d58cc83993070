package testing

import (
	. "github.com/onsi/gomega"
	"github.com/voxsplit/voxsplit-be/src/shared/config/envvar"
	"os"
)

// SetTestEnv points env.Get at the test environment for the whole process.
func SetTestEnv() {
	Expect(os.Setenv(envvar.ENVIRONMENT, "test")).To(Succeed())
}
