package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"solarquote/internal/domain/entities"
	"solarquote/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultQuotesTableName = "quotes"
	quotesOrgIDIndex       = "org_id-index"

	// maxSequenceAttempts bounds the read-compute-write retries when
	// concurrent creations race on the same organization counter.
	maxSequenceAttempts = 5
)

// dynamoAPI is the slice of the DynamoDB client this repository uses.
// *dynamodb.Client satisfies it; tests substitute a fake to exercise the
// sequencing transaction under contention.
type dynamoAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, opts ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, opts ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

type discountItem struct {
	Type   string  `dynamodbav:"type"`
	Value  float64 `dynamodbav:"value"`
	Amount float64 `dynamodbav:"amount"`
}

type lineItemItem struct {
	ID          string        `dynamodbav:"id"`
	ProductID   string        `dynamodbav:"product_id,omitempty"`
	Name        string        `dynamodbav:"name"`
	Description string        `dynamodbav:"description,omitempty"`
	Quantity    float64       `dynamodbav:"quantity"`
	Unit        string        `dynamodbav:"unit,omitempty"`
	UnitPrice   float64       `dynamodbav:"unit_price"`
	TaxRatePct  float64       `dynamodbav:"tax_rate_pct"`
	Discount    *discountItem `dynamodbav:"discount,omitempty"`
	Subtotal    float64       `dynamodbav:"subtotal"`
	TaxAmount   float64       `dynamodbav:"tax_amount"`
	Total       float64       `dynamodbav:"total"`
}

type sectionItem struct {
	Name     string         `dynamodbav:"name"`
	Items    []lineItemItem `dynamodbav:"items"`
	Subtotal float64        `dynamodbav:"subtotal"`
}

type sizingItem struct {
	ArrayKwp            float64 `dynamodbav:"array_kwp"`
	MaxInverterKw       float64 `dynamodbav:"max_inverter_kw"`
	PanelCount          int     `dynamodbav:"panel_count"`
	PanelWattageW       float64 `dynamodbav:"panel_wattage_w"`
	DcCableGaugeMm2     float64 `dynamodbav:"dc_cable_gauge_mm2"`
	AcCableGaugeMm2     float64 `dynamodbav:"ac_cable_gauge_mm2"`
	DcCableRunM         int     `dynamodbav:"dc_cable_run_m"`
	AcCableRunM         int     `dynamodbav:"ac_cable_run_m"`
	BatteryKwh          float64 `dynamodbav:"battery_kwh,omitempty"`
	AnnualProductionKwh float64 `dynamodbav:"annual_production_kwh"`
}

type quoteItem struct {
	ID            string        `dynamodbav:"id"`
	OrgID         string        `dynamodbav:"org_id"`
	CustomerName  string        `dynamodbav:"customer_name,omitempty"`
	Number        string        `dynamodbav:"number"`
	Status        string        `dynamodbav:"status"`
	Sections      []sectionItem `dynamodbav:"sections"`
	Subtotal      float64       `dynamodbav:"subtotal"`
	TotalDiscount float64       `dynamodbav:"total_discount"`
	TaxAmount     float64       `dynamodbav:"tax_amount"`
	Total         float64       `dynamodbav:"total"`
	Sizing        *sizingItem   `dynamodbav:"sizing,omitempty"`
	Warnings      []string      `dynamodbav:"warnings,omitempty"`
	ValidUntil    string        `dynamodbav:"valid_until"`
	CreatedAt     string        `dynamodbav:"created_at"`
	UpdatedAt     string        `dynamodbav:"updated_at"`
}

// QuoteDynamoRepository persists quotes in DynamoDB and assigns their
// sequence numbers.
//
// Table requirements:
//   - quotes: PK id (string), GSI org_id-index (PK: org_id)
//   - organizations: PK id (string), holding quote_prefix,
//     quote_start_number and quotes_count
//
// Numbering runs as an optimistic transaction: read the counter, format the
// number, then TransactWriteItems with a conditional counter increment plus a
// conditional quote insert. A concurrent creation for the same organization
// cancels the transaction; the whole cycle is re-run against the fresh
// counter, bounded by maxSequenceAttempts.

type QuoteDynamoRepository struct {
	ddb           dynamoAPI
	tableName     string
	orgsTableName string
}

var _ interfaces.IQuoteRepository = (*QuoteDynamoRepository)(nil)

func NewQuoteDynamoRepository(ddb *dynamodb.Client) *QuoteDynamoRepository {
	return newQuoteDynamoRepository(ddb)
}

func newQuoteDynamoRepository(ddb dynamoAPI) *QuoteDynamoRepository {
	return &QuoteDynamoRepository{
		ddb:           ddb,
		tableName:     getenvDefault("QUOTES_TABLE", defaultQuotesTableName),
		orgsTableName: getenvDefault("ORGANIZATIONS_TABLE", defaultOrganizationsTableName),
	}
}

func (r *QuoteDynamoRepository) CreateWithSequence(ctx context.Context, q entities.Quote) (entities.Quote, error) {
	for attempt := 0; attempt < maxSequenceAttempts; attempt++ {
		org, err := r.getOrganization(ctx, q.OrgID)
		if err != nil {
			return entities.Quote{}, err
		}
		if org.ID == "" {
			return entities.Quote{}, interfaces.ErrOrganizationNotFound
		}

		seq := org.QuoteStartNumber + org.QuotesCount
		q.Number = fmt.Sprintf("%s-%05d", org.QuotePrefix, seq)

		av, err := attributevalue.MarshalMap(toQuoteItem(q))
		if err != nil {
			return entities.Quote{}, err
		}

		_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: []types.TransactWriteItem{
				{
					Update: &types.Update{
						TableName: aws.String(r.orgsTableName),
						Key: map[string]types.AttributeValue{
							"id": &types.AttributeValueMemberS{Value: q.OrgID},
						},
						UpdateExpression:    aws.String("SET quotes_count = :next, updated_at = :now"),
						ConditionExpression: aws.String("attribute_exists(#id) AND quotes_count = :observed"),
						ExpressionAttributeNames: map[string]string{
							"#id": "id",
						},
						ExpressionAttributeValues: map[string]types.AttributeValue{
							":observed": &types.AttributeValueMemberN{Value: strconv.Itoa(org.QuotesCount)},
							":next":     &types.AttributeValueMemberN{Value: strconv.Itoa(org.QuotesCount + 1)},
							":now":      &types.AttributeValueMemberS{Value: formatTime(q.CreatedAt)},
						},
					},
				},
				{
					Put: &types.Put{
						TableName:           aws.String(r.tableName),
						Item:                av,
						ConditionExpression: aws.String("attribute_not_exists(#id)"),
						ExpressionAttributeNames: map[string]string{
							"#id": "id",
						},
					},
				},
			},
		})
		if err == nil {
			return q, nil
		}
		if isTransactionConflict(err) {
			// Lost the write-write race on the counter; re-read and retry.
			log.Printf("[quote][repo] sequence conflict org_id=%s attempt=%d", q.OrgID, attempt+1)
			continue
		}
		return entities.Quote{}, err
	}
	return entities.Quote{}, interfaces.ErrQuoteNumberContention
}

func (r *QuoteDynamoRepository) GetByID(ctx context.Context, id string) (entities.Quote, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Quote{}, err
	}
	if len(out.Item) == 0 {
		return entities.Quote{}, nil
	}

	var it quoteItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Quote{}, err
	}
	return fromQuoteItem(it), nil
}

// Update replaces the whole quote document. The sequence number is carried
// through unchanged; only creation may set it.
func (r *QuoteDynamoRepository) Update(ctx context.Context, q entities.Quote) (entities.Quote, error) {
	av, err := attributevalue.MarshalMap(toQuoteItem(q))
	if err != nil {
		return entities.Quote{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return entities.Quote{}, nil
		}
		return entities.Quote{}, err
	}
	return q, nil
}

func (r *QuoteDynamoRepository) ListByOrgID(ctx context.Context, orgID string) ([]entities.Quote, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(quotesOrgIDIndex),
		KeyConditionExpression: aws.String("org_id = :oid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":oid": &types.AttributeValueMemberS{Value: orgID},
		},
	})
	if err != nil {
		return nil, err
	}

	quotes := make([]entities.Quote, 0, len(out.Items))
	for _, raw := range out.Items {
		var it quoteItem
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return nil, err
		}
		quotes = append(quotes, fromQuoteItem(it))
	}
	return quotes, nil
}

func (r *QuoteDynamoRepository) getOrganization(ctx context.Context, orgID string) (entities.Organization, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.orgsTableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: orgID},
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

func isTransactionConflict(err error) bool {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return false
	}
	for _, reason := range tce.CancellationReasons {
		if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
			return true
		}
	}
	return false
}

func toQuoteItem(q entities.Quote) quoteItem {
	it := quoteItem{
		ID:            q.ID,
		OrgID:         q.OrgID,
		CustomerName:  q.CustomerName,
		Number:        q.Number,
		Status:        string(q.Status),
		Subtotal:      q.Subtotal,
		TotalDiscount: q.TotalDiscount,
		TaxAmount:     q.TaxAmount,
		Total:         q.Total,
		Warnings:      q.Warnings,
		ValidUntil:    formatTime(q.ValidUntil),
		CreatedAt:     formatTime(q.CreatedAt),
		UpdatedAt:     formatTime(q.UpdatedAt),
	}
	for _, s := range q.Sections {
		sec := sectionItem{Name: string(s.Name), Subtotal: s.Subtotal}
		for _, li := range s.Items {
			item := lineItemItem{
				ID:          li.ID,
				ProductID:   li.ProductID,
				Name:        li.Name,
				Description: li.Description,
				Quantity:    li.Quantity,
				Unit:        li.Unit,
				UnitPrice:   li.UnitPrice,
				TaxRatePct:  li.TaxRatePct,
				Subtotal:    li.Subtotal,
				TaxAmount:   li.TaxAmount,
				Total:       li.Total,
			}
			if li.Discount != nil {
				item.Discount = &discountItem{Type: string(li.Discount.Type), Value: li.Discount.Value, Amount: li.Discount.Amount}
			}
			sec.Items = append(sec.Items, item)
		}
		it.Sections = append(it.Sections, sec)
	}
	if q.Sizing != nil {
		it.Sizing = &sizingItem{
			ArrayKwp:            q.Sizing.ArrayKwp,
			MaxInverterKw:       q.Sizing.MaxInverterKw,
			PanelCount:          q.Sizing.PanelCount,
			PanelWattageW:       q.Sizing.PanelWattageW,
			DcCableGaugeMm2:     q.Sizing.DcCableGaugeMm2,
			AcCableGaugeMm2:     q.Sizing.AcCableGaugeMm2,
			DcCableRunM:         q.Sizing.DcCableRunM,
			AcCableRunM:         q.Sizing.AcCableRunM,
			BatteryKwh:          q.Sizing.BatteryKwh,
			AnnualProductionKwh: q.Sizing.AnnualProductionKwh,
		}
	}
	return it
}

func fromQuoteItem(it quoteItem) entities.Quote {
	q := entities.Quote{
		ID:           it.ID,
		OrgID:        it.OrgID,
		CustomerName: it.CustomerName,
		Number:       it.Number,
		Status:       entities.QuoteStatus(it.Status),
		QuoteTotals: entities.QuoteTotals{
			Subtotal:      it.Subtotal,
			TotalDiscount: it.TotalDiscount,
			TaxAmount:     it.TaxAmount,
			Total:         it.Total,
		},
		Warnings:   it.Warnings,
		ValidUntil: parseTime(it.ValidUntil),
		CreatedAt:  parseTime(it.CreatedAt),
		UpdatedAt:  parseTime(it.UpdatedAt),
	}
	for _, s := range it.Sections {
		sec := entities.Section{Name: entities.SectionName(s.Name), Subtotal: s.Subtotal}
		for _, li := range s.Items {
			item := entities.LineItem{
				ID:          li.ID,
				ProductID:   li.ProductID,
				Name:        li.Name,
				Description: li.Description,
				Quantity:    li.Quantity,
				Unit:        li.Unit,
				UnitPrice:   li.UnitPrice,
				TaxRatePct:  li.TaxRatePct,
				Subtotal:    li.Subtotal,
				TaxAmount:   li.TaxAmount,
				Total:       li.Total,
			}
			if li.Discount != nil {
				item.Discount = &entities.Discount{Type: entities.DiscountType(li.Discount.Type), Value: li.Discount.Value, Amount: li.Discount.Amount}
			}
			sec.Items = append(sec.Items, item)
		}
		q.Sections = append(q.Sections, sec)
	}
	if it.Sizing != nil {
		q.Sizing = &entities.SizingResult{
			ArrayKwp:            it.Sizing.ArrayKwp,
			MaxInverterKw:       it.Sizing.MaxInverterKw,
			PanelCount:          it.Sizing.PanelCount,
			PanelWattageW:       it.Sizing.PanelWattageW,
			DcCableGaugeMm2:     it.Sizing.DcCableGaugeMm2,
			AcCableGaugeMm2:     it.Sizing.AcCableGaugeMm2,
			DcCableRunM:         it.Sizing.DcCableRunM,
			AcCableRunM:         it.Sizing.AcCableRunM,
			BatteryKwh:          it.Sizing.BatteryKwh,
			AnnualProductionKwh: it.Sizing.AnnualProductionKwh,
		}
	}
	return q
}
