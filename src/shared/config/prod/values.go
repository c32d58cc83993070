package prod

const DynamoDBRegion = "us-east-2"
