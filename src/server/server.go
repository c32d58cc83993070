package main

import (
	"github.com/voxsplit/voxsplit-be/src/server/application"
	"github.com/voxsplit/voxsplit-be/src/shared/config"
	"github.com/voxsplit/voxsplit-be/src/shared/config/dev"
	"github.com/voxsplit/voxsplit-be/src/shared/config/envvar"
	"github.com/voxsplit/voxsplit-be/src/shared/config/prod"
	"github.com/voxsplit/voxsplit-be/src/shared/lib/env"
	"strings"
)

func main() {
	var appConfig application.Config

	switch env.Get() {
	case env.Production:
		commaSeparatedOrigins := envvar.MustGet(envvar.ALLOWED_FE_ORIGINS)
		allowedOrigins := strings.Split(commaSeparatedOrigins, ",")

		appConfig = application.Config{
			JobStoreConfig: config.ProdDynamo{
				AccessKeyID:     envvar.MustGet(envvar.AWS_ACCESS_KEY_ID),
				SecretAccessKey: envvar.MustGet(envvar.AWS_SECRET_ACCESS_KEY),
				Region:          prod.DynamoDBRegion,
			},
			RabbitMQURL:        envvar.MustGet(envvar.RABBITMQ_URL),
			RabbitMQQueueName:  envvar.MustGet(envvar.RABBITMQ_QUEUE_NAME),
			CORSAllowedOrigins: allowedOrigins,
			UploadsDirPath:     envvar.MustGet(envvar.UPLOADS_DIR_PATH),
			OutputDirPath:      envvar.MustGet(envvar.OUTPUT_DIR_PATH),
			Port:               ":5000",
			Log:                true,
		}

	case env.Development:
		appConfig = application.Config{
			JobStoreConfig: config.LocalSQLite{
				DBPath: dev.SQLiteDBPath(),
			},
			RabbitMQURL:        dev.RabbitMQHost,
			RabbitMQQueueName:  dev.RabbitMQQueueName,
			CORSAllowedOrigins: []string{"*"},
			UploadsDirPath:     dev.UploadsDirPath(),
			OutputDirPath:      dev.OutputDirPath(),
			Port:               ":5000",
			Log:                true,
		}

	default:
		panic("Unexpected environment")
	}

	app := application.NewApp(appConfig)
	if err := app.Start(); err != nil {
		panic(err)
	}
}
