package main

import (
	"github.com/voxsplit/voxsplit-be/src/shared/config"
	"github.com/voxsplit/voxsplit-be/src/shared/config/dev"
	"github.com/voxsplit/voxsplit-be/src/shared/config/envvar"
	"github.com/voxsplit/voxsplit-be/src/shared/config/prod"
	"github.com/voxsplit/voxsplit-be/src/shared/lib/env"
	"github.com/voxsplit/voxsplit-be/src/worker/application"
	"os"
)

func main() {
	var appConfig application.Config

	switch env.Get() {
	case env.Production:
		appConfig = application.Config{
			JobStoreConfig: config.ProdDynamo{
				AccessKeyID:     envvar.MustGet(envvar.AWS_ACCESS_KEY_ID),
				SecretAccessKey: envvar.MustGet(envvar.AWS_SECRET_ACCESS_KEY),
				Region:          prod.DynamoDBRegion,
			},
			SplitEngineConfig:   prodSplitEngineConfig(),
			RabbitMQURL:         envvar.MustGet(envvar.RABBITMQ_URL),
			RabbitMQQueueName:   envvar.MustGet(envvar.RABBITMQ_QUEUE_NAME),
			SplitWorkingDirPath: envvar.MustGet(envvar.SPLIT_WORKING_DIR_PATH),
			OutputDirPath:       envvar.MustGet(envvar.OUTPUT_DIR_PATH),
		}

	case env.Development:
		appConfig = application.Config{
			JobStoreConfig: config.LocalSQLite{
				DBPath: dev.SQLiteDBPath(),
			},
			SplitEngineConfig:   devSplitEngineConfig(),
			RabbitMQURL:         dev.RabbitMQHost,
			RabbitMQQueueName:   dev.RabbitMQQueueName,
			SplitWorkingDirPath: dev.SplitWorkingDirPath(),
			OutputDirPath:       dev.OutputDirPath(),
		}

	default:
		panic("Unexpected environment")
	}

	app := application.NewApp(appConfig)
	if err := app.Start(); err != nil {
		panic(err)
	}
}

func prodSplitEngineConfig() config.SplitEngine {
	switch os.Getenv(envvar.SPLIT_ENGINE) {
	case "demucs":
		return config.LocalDemucs{
			BinPath: envvar.MustGet(envvar.DEMUCS_BIN_PATH),
		}

	case "docker":
		return config.DockerSpleeter{
			Image: envvar.MustGet(envvar.SPLEETER_DOCKER_IMAGE),
		}

	default:
		return config.LocalSpleeter{
			BinPath: envvar.MustGet(envvar.SPLEETER_BIN_PATH),
		}
	}
}

func devSplitEngineConfig() config.SplitEngine {
	switch os.Getenv(envvar.SPLIT_ENGINE) {
	case "demucs":
		return config.LocalDemucs{
			BinPath: config.DemucsPath(),
		}

	case "docker":
		return config.DockerSpleeter{
			Image: dev.SpleeterDockerImage,
		}

	default:
		return config.LocalSpleeter{
			BinPath: config.SpleeterPath(),
		}
	}
}
