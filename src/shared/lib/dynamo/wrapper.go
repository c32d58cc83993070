package dynamolib

import (
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/guregu/dynamo"
)

// Job records legitimately carry empty strings and maps, e.g. stem paths
// before completion. The default encoder nulls those out, so puts go
// through one that keeps them.
var encoder = dynamodbattribute.NewEncoder(func(e *dynamodbattribute.Encoder) {
	e.MarshalOptions.EnableEmptyCollections = true
	e.NullEmptyString = false
	e.NullEmptyByteSlice = false
})

type attributeMap map[string]any

func (a attributeMap) MarshalDynamo() (*dynamodb.AttributeValue, error) {
	return encoder.Encode(map[string]any(a))
}

type DynamoDBWrapper struct {
	*dynamo.DB
}

func NewDynamoDBWrapper(db *dynamo.DB) DynamoDBWrapper {
	return DynamoDBWrapper{DB: db}
}

type DynamoTableWrapper struct {
	dynamo.Table
}

func (d DynamoDBWrapper) Table(tableName string) DynamoTableWrapper {
	return DynamoTableWrapper{
		Table: d.DB.Table(tableName),
	}
}

func (d DynamoTableWrapper) Put(input map[string]any) *dynamo.Put {
	return d.Table.Put(attributeMap(input))
}
