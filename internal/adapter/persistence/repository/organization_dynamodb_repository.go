package repository

import (
	"context"

	"solarquote/internal/domain/entities"
	"solarquote/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const defaultOrganizationsTableName = "organizations"

type organizationItem struct {
	ID               string `dynamodbav:"id"`
	Name             string `dynamodbav:"name"`
	QuotePrefix      string `dynamodbav:"quote_prefix"`
	QuoteStartNumber int    `dynamodbav:"quote_start_number"`
	QuotesCount      int    `dynamodbav:"quotes_count"`
	CreatedAt        string `dynamodbav:"created_at"`
	UpdatedAt        string `dynamodbav:"updated_at"`
}

// OrganizationDynamoRepository reads organizations from DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//
// The counter fields on the item are only ever written by the quote-creation
// transaction in QuoteDynamoRepository.

type OrganizationDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IOrganizationRepository = (*OrganizationDynamoRepository)(nil)

func NewOrganizationDynamoRepository(ddb *dynamodb.Client) *OrganizationDynamoRepository {
	return &OrganizationDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("ORGANIZATIONS_TABLE", defaultOrganizationsTableName),
	}
}

func (r *OrganizationDynamoRepository) GetByID(ctx context.Context, id string) (entities.Organization, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Organization{}, err
	}
	if len(out.Item) == 0 {
		return entities.Organization{}, nil
	}

	var it organizationItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Organization{}, err
	}
	return fromOrganizationItem(it), nil
}

func fromOrganizationItem(it organizationItem) entities.Organization {
	return entities.Organization{
		ID:               it.ID,
		Name:             it.Name,
		QuotePrefix:      it.QuotePrefix,
		QuoteStartNumber: it.QuoteStartNumber,
		QuotesCount:      it.QuotesCount,
		CreatedAt:        parseTime(it.CreatedAt),
		UpdatedAt:        parseTime(it.UpdatedAt),
	}
}
