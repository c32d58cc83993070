package application

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/guregu/dynamo"
	"github.com/rabbitmq/amqp091-go"
	"github.com/voxsplit/voxsplit-be/src/shared/config"
	jobentity "github.com/voxsplit/voxsplit-be/src/shared/job/entity"
	jobstorage "github.com/voxsplit/voxsplit-be/src/shared/job/storage"
	dynamolib "github.com/voxsplit/voxsplit-be/src/shared/lib/dynamo"
	"github.com/voxsplit/voxsplit-be/src/shared/stempath"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/application/executor"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/application/jobs/job_router"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/application/jobs/split"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/application/jobs/split/splitter"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/application/jobs/split/splitter/file_splitter"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/application/worker"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/lib/cerr"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/lib/working_dir"
	"os"
)

func must[T any](t T, err error) T {
	if err != nil {
		panic(err)
	}

	return t
}

type App struct {
	worker worker.QueueWorker
}

type Config struct {
	RabbitMQURL       string
	RabbitMQQueueName string
	JobStoreConfig    config.JobStore
	SplitEngineConfig config.SplitEngine

	SplitWorkingDirPath string
	OutputDirPath       string
}

func NewApp(config Config) App {
	consumerConn := must(amqp091.Dial(config.RabbitMQURL))

	return App{
		worker: newWorker(config, consumerConn),
	}
}

func (a *App) Start() error {
	err := a.worker.Start()
	if err != nil {
		return cerr.Wrap(err).Error("Failed to start worker")
	}

	return nil
}

func (a *App) Stop() {
	a.worker.Stop()
}

func newWorker(config Config, consumerConn *amqp091.Connection) worker.QueueWorker {
	jobStore := newJobStore(config.JobStoreConfig)

	queueWorker := must(worker.NewQueueWorkerFromConnection(
		consumerConn,
		config.RabbitMQQueueName,
		newJobRouter(config, jobStore)))

	return queueWorker
}

func newJobStore(jobStoreConfig config.JobStore) jobentity.Store {
	switch t := jobStoreConfig.(type) {
	case config.ProdDynamo:
		dbConfig := aws.NewConfig().
			WithCredentials(credentials.NewStaticCredentials(
				t.AccessKeyID,
				t.SecretAccessKey,
				"",
			)).
			WithRegion(t.Region)

		return jobstorage.NewDynamoDB(newDynamoDB(dbConfig))

	case config.LocalDynamo:
		dbConfig := aws.NewConfig().
			WithCredentials(credentials.NewStaticCredentials(
				t.AccessKeyID,
				t.SecretAccessKey,
				"",
			)).
			WithRegion(t.Region).
			WithEndpoint(t.Host)

		return jobstorage.NewDynamoDB(newDynamoDB(dbConfig))

	case config.LocalSQLite:
		return must(jobstorage.NewSQLiteDB(t.DBPath))

	case config.EphemeralMemory:
		return jobstorage.NewMemoryDB()

	default:
		panic("Unexpected job store config type")
	}
}

func newDynamoDB(dbConfig *aws.Config) dynamolib.DynamoDBWrapper {
	dbSession := session.Must(session.NewSession())

	return dynamolib.DynamoDBWrapper{
		DB: dynamo.New(dbSession, dbConfig),
	}
}

func newJobRouter(config Config, jobStore jobentity.Store) job_router.JobRouter {
	return job_router.NewJobRouter(
		jobStore,
		newSplitJobHandler(config, jobStore))
}

func newSplitJobHandler(config Config, jobStore jobentity.Store) split.JobHandler {
	if err := os.MkdirAll(config.SplitWorkingDirPath, os.ModePerm); err != nil {
		panic(err)
	}

	if err := os.MkdirAll(config.OutputDirPath, os.ModePerm); err != nil {
		panic(err)
	}

	fileSplitter := newFileSplitter(config.SplitEngineConfig, config.SplitWorkingDirPath)

	pathGenerator := must(stempath.NewGenerator(config.OutputDirPath))
	workingDir := must(working_dir.NewWorkingDir(config.SplitWorkingDirPath))

	stemSplitter := splitter.NewStemSplitter(fileSplitter, pathGenerator, workingDir)

	return split.NewJobHandler(jobStore, stemSplitter)
}

func newFileSplitter(engineConfig config.SplitEngine, workingDirPath string) splitter.FileSplitter {
	switch t := engineConfig.(type) {
	case config.LocalSpleeter:
		return must(file_splitter.NewLocalFileSplitter(
			workingDirPath,
			splitter.SpleeterEngine,
			t.BinPath,
			executor.BinaryFileExecutor{},
		))

	case config.LocalDemucs:
		return must(file_splitter.NewLocalFileSplitter(
			workingDirPath,
			splitter.DemucsEngine,
			t.BinPath,
			executor.BinaryFileExecutor{},
		))

	case config.DockerSpleeter:
		dockerClient := must(file_splitter.NewDockerClient())

		return must(file_splitter.NewDockerFileSplitter(
			workingDirPath,
			t.Image,
			dockerClient,
		))

	default:
		panic("Unexpected split engine config type")
	}
}
