package dev

import (
	"path"

	"github.com/voxsplit/voxsplit-be/src/shared/config"
	"github.com/voxsplit/voxsplit-be/src/shared/config/local"
)

// DynamoDB
const (
	DynamoAccessKeyID     = "local"
	DynamoSecretAccessKey = "local"
	DynamoDBHost          = "http://localhost:8000"
	DynamoDBRegion        = "localhost"
)

var DynamoConfig = config.LocalDynamo{
	AccessKeyID:     DynamoAccessKeyID,
	SecretAccessKey: DynamoSecretAccessKey,
	Region:          DynamoDBRegion,
	Host:            DynamoDBHost,
}

// RabbitMQ
const (
	RabbitMQHost      = "amqp://localhost:5672"
	RabbitMQQueueName = "voxsplit-jobs-dev"
)

// Job store
func SQLiteDBPath() string {
	return path.Join(local.ProjectRoot(), "wd/voxsplit-dev.db")
}

// File layout
func UploadsDirPath() string {
	return path.Join(local.ProjectRoot(), "wd/uploads")
}

func OutputDirPath() string {
	return path.Join(local.ProjectRoot(), "wd/output")
}

func SplitWorkingDirPath() string {
	return path.Join(local.ProjectRoot(), "wd/split")
}

// Spleeter
const SpleeterDockerImage = "researchdeezer/spleeter:3.8"
