package testing

import (
	"fmt"
	"strings"
)

func ServerEndpoint(path string) string {
	if !strings.HasPrefix(path, "/") {
		panic(fmt.Sprintf("server paths start with a slash, got %s", path))
	}

	return "http://localhost" + ServerPort + path
}
