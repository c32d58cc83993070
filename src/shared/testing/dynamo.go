package testing

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/guregu/dynamo"
	. "github.com/onsi/gomega"
	"github.com/voxsplit/voxsplit-be/src/shared/config/dev"
	jobstorage "github.com/voxsplit/voxsplit-be/src/shared/job/storage"
	dynamolib "github.com/voxsplit/voxsplit-be/src/shared/lib/dynamo"
)

// jobKey carries only the hash key. The rest of the record's shape comes
// from the items that get put in.
type jobKey struct {
	ID string `dynamo:"id,hash"`
}

// MakeTestDB connects to the local DynamoDB instance. testRegion acts as a
// namespace so that concurrent suites don't stomp on each other's tables.
func MakeTestDB(testRegion string) dynamolib.DynamoDBWrapper {
	dbSession := session.Must(session.NewSession())

	config := aws.NewConfig().
		WithCredentials(credentials.NewStaticCredentials(dev.DynamoAccessKeyID, dev.DynamoSecretAccessKey, "")).
		WithEndpoint(dev.DynamoDBHost).
		WithRegion(testRegion)

	db := dynamo.New(dbSession, config)
	return dynamolib.NewDynamoDBWrapper(db)
}

func ResetDB(db dynamolib.DynamoDBWrapper) {
	DeleteAllTables(db)
	CreateAllTables(db)
}

func BeforeSuiteDB(testRegion string) dynamolib.DynamoDBWrapper {
	db := MakeTestDB(testRegion)
	DeleteAllTables(db)
	return db
}

func AfterSuiteDB(db dynamolib.DynamoDBWrapper) {
	DeleteAllTables(db)
}

func CreateAllTables(db dynamolib.DynamoDBWrapper) {
	err := db.CreateTable(jobstorage.JobsTable, jobKey{}).Run()
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
}

func DeleteAllTables(db dynamolib.DynamoDBWrapper) {
	tableResults := db.ListTables()
	tableNames := ExpectSuccess(tableResults.All())

	for _, tableName := range tableNames {
		err := db.Table(tableName).DeleteTable().Run()
		ExpectWithOffset(1, err).NotTo(HaveOccurred())
	}
}
