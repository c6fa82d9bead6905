package dynamo

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pg-onboarding-api/internal/config"
)

const tableActiveTimeout = 2 * time.Minute

type tableCreator interface {
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// Bootstrap creates any missing table and waits until new ones are ACTIVE.
// Existing tables are left alone; failures are logged so a read-only role can still start.
func Bootstrap(ctx context.Context, client tableCreator, tables config.DynamoTables) {
	waiter := dynamodb.NewTableExistsWaiter(client)
	for _, in := range tableSpecs(tables) {
		created, err := createTable(ctx, client, in)
		if err != nil {
			slog.Warn("could not create table", "table", *in.TableName, "err", err)
			continue
		}
		if !created {
			continue
		}
		err = waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: in.TableName}, tableActiveTimeout)
		if err != nil {
			slog.Warn("table not active", "table", *in.TableName, "err", err)
			continue
		}
		slog.Info("created table", "table", *in.TableName)
	}
}

// tableSpecs lists every table the service owns. Profile sections and verification
// records share the user_id-keyed layout.
func tableSpecs(tables config.DynamoTables) []*dynamodb.CreateTableInput {
	specs := make([]*dynamodb.CreateTableInput, 0, 8)
	for _, name := range []string{
		tables.UserVerifications,
		tables.Profiles,
		tables.ProfessionalDetails,
		tables.BankDetails,
		tables.EmergencyContacts,
		tables.Documents,
		tables.KYC,
	} {
		specs = append(specs, userKeyedTable(name))
	}
	return append(specs, filesTable(tables.Files))
}

func userKeyedTable(name string) *dynamodb.CreateTableInput {
	return &dynamodb.CreateTableInput{
		TableName:   aws.String(name),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(fieldUserID), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(fieldUserID), KeyType: types.KeyTypeHash},
		},
	}
}

func filesTable(name string) *dynamodb.CreateTableInput {
	return &dynamodb.CreateTableInput{
		TableName:   aws.String(name),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(fieldFileID), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(fieldUploadedBy), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(fieldCreatedAt), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(fieldFileID), KeyType: types.KeyTypeHash},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			gsi(filesByUploaderIndex, fieldUploadedBy, fieldCreatedAt),
		},
	}
}

// gsi builds a GSI descriptor. If sortKey is empty, only a hash key is added.
func gsi(indexName, hashKey, sortKey string) types.GlobalSecondaryIndex {
	ks := []types.KeySchemaElement{
		{AttributeName: aws.String(hashKey), KeyType: types.KeyTypeHash},
	}
	if sortKey != "" {
		ks = append(ks, types.KeySchemaElement{
			AttributeName: aws.String(sortKey), KeyType: types.KeyTypeRange,
		})
	}
	return types.GlobalSecondaryIndex{
		IndexName:  aws.String(indexName),
		KeySchema:  ks,
		Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
	}
}

// createTable reports whether the table was newly created. An existing table is not an error.
func createTable(ctx context.Context, client tableCreator, in *dynamodb.CreateTableInput) (bool, error) {
	_, err := client.CreateTable(ctx, in)
	var inUse *types.ResourceInUseException
	if errors.As(err, &inUse) {
		return false, nil
	}
	return err == nil, err
}
