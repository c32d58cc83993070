package env

import (
	"fmt"
	"github.com/voxsplit/voxsplit-be/src/shared/config/envvar"
)

type Environment string

const (
	Production  Environment = "production"
	Development Environment = "development"
	Test        Environment = "test"
)

func Get() Environment {
	value := envvar.MustGet(envvar.ENVIRONMENT)

	switch environment := Environment(value); environment {
	case Production, Development, Test:
		return environment
	default:
		panic(fmt.Sprintf("Unrecognized ENVIRONMENT value: %s", value))
	}
}
