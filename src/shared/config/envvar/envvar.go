package envvar

import (
	"fmt"
	"os"
)

const (
	ENVIRONMENT            = "ENVIRONMENT"
	AWS_ACCESS_KEY_ID      = "AWS_ACCESS_KEY_ID"
	AWS_SECRET_ACCESS_KEY  = "AWS_SECRET_ACCESS_KEY"
	RABBITMQ_URL           = "RABBITMQ_URL"
	RABBITMQ_QUEUE_NAME    = "RABBITMQ_QUEUE_NAME"
	SPLIT_ENGINE           = "SPLIT_ENGINE"
	SPLEETER_BIN_PATH      = "SPLEETER_BIN_PATH"
	DEMUCS_BIN_PATH        = "DEMUCS_BIN_PATH"
	SPLEETER_DOCKER_IMAGE  = "SPLEETER_DOCKER_IMAGE"
	SPLIT_WORKING_DIR_PATH = "SPLIT_WORKING_DIR_PATH"
	UPLOADS_DIR_PATH       = "UPLOADS_DIR_PATH"
	OUTPUT_DIR_PATH        = "OUTPUT_DIR_PATH"
	ALLOWED_FE_ORIGINS     = "ALLOWED_FE_ORIGINS"
)

func MustGet(key string) string {
	val, isSet := os.LookupEnv(key)
	if !isSet {
		panic(fmt.Sprintf("No env variable found for key %s", key))
	}

	if val == "" {
		panic(fmt.Sprintf("Env variable is empty for key %s", key))
	}

	return val
}
