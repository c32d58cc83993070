package application

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cockroachdb/errors"
	"github.com/guregu/dynamo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	downloadgateway "github.com/voxsplit/voxsplit-be/src/server/internal/download/gateway"
	downloadusecase "github.com/voxsplit/voxsplit-be/src/server/internal/download/usecase"
	separationgateway "github.com/voxsplit/voxsplit-be/src/server/internal/separation/gateway"
	separationusecase "github.com/voxsplit/voxsplit-be/src/server/internal/separation/usecase"
	"github.com/voxsplit/voxsplit-be/src/shared/config"
	jobentity "github.com/voxsplit/voxsplit-be/src/shared/job/entity"
	jobstorage "github.com/voxsplit/voxsplit-be/src/shared/job/storage"
	dynamolib "github.com/voxsplit/voxsplit-be/src/shared/lib/dynamo"
	"github.com/voxsplit/voxsplit-be/src/shared/lib/rabbitmq"
	"github.com/voxsplit/voxsplit-be/src/shared/stempath"
	"net/http"
	"os"
)

type HTTPMethod string

const (
	GET    HTTPMethod = "GET"
	POST   HTTPMethod = "POST"
	PUT    HTTPMethod = "PUT"
	DELETE HTTPMethod = "DELETE"
)

type App struct {
	echo *echo.Echo
	port string
}

type Config struct {
	JobStoreConfig     config.JobStore
	RabbitMQURL        string
	RabbitMQQueueName  string
	CORSAllowedOrigins []string
	UploadsDirPath     string
	OutputDirPath      string
	Port               string
	Log                bool
}

func NewApp(config Config) App {
	e := echo.New()

	if config.Log {
		e.Use(middleware.Logger())
	}

	corsMiddleware := makeCorsMiddleware(config)

	handleRoute := func(method HTTPMethod, path string, handlerFunc echo.HandlerFunc) {
		params := func() (string, echo.HandlerFunc, echo.MiddlewareFunc) {
			return path, handlerFunc, corsMiddleware
		}

		e.OPTIONS(params())

		switch method {
		case GET:
			e.GET(params())
		case POST:
			e.POST(params())
		case PUT:
			e.PUT(params())
		case DELETE:
			e.DELETE(params())
		default:
			panic("unhandled http method!")
		}
	}

	makeServingRoots(config)

	jobStore := makeJobStore(config.JobStoreConfig)
	rabbitmqPublisher := makeRabbitMQPublisher(config)
	pathGenerator := makePathGenerator(config)

	separationGateway := makeSeparationGateway(config, jobStore, rabbitmqPublisher)
	downloadGateway := makeDownloadGateway(jobStore, pathGenerator)

	// health checks
	handleRoute(GET, "/health-check", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
	handleRoute(GET, "/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "alive"})
	})

	// separation routes
	handleRoute(POST, "/process-audio/", separationGateway.ProcessAudio)
	handleRoute(GET, "/status/:task_id", func(c echo.Context) error {
		jobID := c.Param("task_id")
		return separationGateway.GetJobStatus(c, jobID)
	})

	// download routes
	handleRoute(GET, "/download/:task_id/all", func(c echo.Context) error {
		jobID := c.Param("task_id")
		return downloadGateway.DownloadAll(c, jobID)
	})
	handleRoute(GET, "/download/*", func(c echo.Context) error {
		relPath := c.Param("*")
		return downloadGateway.DownloadFile(c, relPath)
	})

	return App{
		echo: e,
		port: config.Port,
	}
}

func (a *App) Start() error {
	err := a.echo.Start(a.port)
	if err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "Couldn't start echo server")
	}

	return nil
}

func (a *App) Stop() error {
	err := a.echo.Close()
	if err != nil {
		return errors.Wrap(err, "Failed to stop echo server")
	}

	return nil
}

func makeServingRoots(config Config) {
	if err := os.MkdirAll(config.UploadsDirPath, os.ModePerm); err != nil {
		panic(errors.Wrap(err, "Failed to create the uploads dir"))
	}

	if err := os.MkdirAll(config.OutputDirPath, os.ModePerm); err != nil {
		panic(errors.Wrap(err, "Failed to create the output dir"))
	}
}

func makeRabbitMQPublisher(config Config) *rabbitmq.QueuePublisher {
	publisher, err := rabbitmq.NewQueuePublisher(config.RabbitMQURL, config.RabbitMQQueueName)
	if err != nil {
		panic(errors.Wrap(err, "Failed to create rabbitMQ publisher"))
	}

	return publisher
}

func makeJobStore(jobStoreConfig config.JobStore) jobentity.Store {
	switch t := jobStoreConfig.(type) {
	case config.ProdDynamo:
		dbConfig := aws.NewConfig().
			WithCredentials(credentials.NewStaticCredentials(
				t.AccessKeyID,
				t.SecretAccessKey,
				"",
			)).
			WithRegion(t.Region)

		return jobstorage.NewDynamoDB(makeDynamoDB(dbConfig))

	case config.LocalDynamo:
		dbConfig := aws.NewConfig().
			WithCredentials(credentials.NewStaticCredentials(
				t.AccessKeyID,
				t.SecretAccessKey,
				"",
			)).
			WithRegion(t.Region).
			WithEndpoint(t.Host)

		return jobstorage.NewDynamoDB(makeDynamoDB(dbConfig))

	case config.LocalSQLite:
		store, err := jobstorage.NewSQLiteDB(t.DBPath)
		if err != nil {
			panic(errors.Wrap(err, "Failed to open the sqlite job store"))
		}

		return store

	case config.EphemeralMemory:
		return jobstorage.NewMemoryDB()

	default:
		panic("Unexpected job store config type")
	}
}

func makeDynamoDB(dbConfig *aws.Config) dynamolib.DynamoDBWrapper {
	dbSession := session.Must(session.NewSession())

	db := dynamo.New(dbSession, dbConfig)
	return dynamolib.NewDynamoDBWrapper(db)
}

func makePathGenerator(config Config) stempath.Generator {
	pathGenerator, err := stempath.NewGenerator(config.OutputDirPath)
	if err != nil {
		panic(errors.Wrap(err, "Failed to create the stem path generator"))
	}

	return pathGenerator
}

func makeSeparationGateway(config Config, jobStore jobentity.Store, publisher rabbitmq.Publisher) separationgateway.Gateway {
	separationUsecase := separationusecase.NewUsecase(jobStore, publisher, config.UploadsDirPath)
	return separationgateway.NewGateway(separationUsecase)
}

func makeDownloadGateway(jobStore jobentity.Store, pathGenerator stempath.Generator) downloadgateway.Gateway {
	downloadUsecase := downloadusecase.NewUsecase(jobStore, pathGenerator)
	return downloadgateway.NewGateway(downloadUsecase)
}

func makeCorsMiddleware(config Config) echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: config.CORSAllowedOrigins,
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	})
}
