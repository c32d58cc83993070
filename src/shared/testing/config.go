package testing

import (
	server_app "github.com/voxsplit/voxsplit-be/src/server/application"
	"github.com/voxsplit/voxsplit-be/src/shared/config"
	"github.com/voxsplit/voxsplit-be/src/shared/config/dev"
	worker_app "github.com/voxsplit/voxsplit-be/src/worker/application"
)

// RabbitMQ
const (
	RabbitMQHost      = dev.RabbitMQHost
	RabbitMQQueueName = "voxsplit-jobs-test"
)

// HTTP
const ServerPort = ":5010"

func ServerConfig(jobStoreConfig config.JobStore, uploadsDirPath string, outputDirPath string) server_app.Config {
	return server_app.Config{
		JobStoreConfig:     jobStoreConfig,
		RabbitMQURL:        RabbitMQHost,
		RabbitMQQueueName:  RabbitMQQueueName,
		CORSAllowedOrigins: []string{"*"},
		UploadsDirPath:     uploadsDirPath,
		OutputDirPath:      outputDirPath,
		Port:               ServerPort,
		Log:                false,
	}
}

func WorkerConfig(jobStoreConfig config.JobStore, engineConfig config.SplitEngine, splitWorkingDirPath string, outputDirPath string) worker_app.Config {
	return worker_app.Config{
		RabbitMQURL:         RabbitMQHost,
		RabbitMQQueueName:   RabbitMQQueueName,
		JobStoreConfig:      jobStoreConfig,
		SplitEngineConfig:   engineConfig,
		SplitWorkingDirPath: splitWorkingDirPath,
		OutputDirPath:       outputDirPath,
	}
}
