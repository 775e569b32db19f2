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

const (
	defaultProductsTableName = "products"
	productsOrgIDIndex       = "org_id-index"
)

type panelSpecItem struct {
	WattageW      float64 `dynamodbav:"wattage_w"`
	EfficiencyPct float64 `dynamodbav:"efficiency_pct,omitempty"`
}

type inverterSpecItem struct {
	PowerKw      float64 `dynamodbav:"power_kw"`
	MpptChannels int     `dynamodbav:"mppt_channels,omitempty"`
	Phase        string  `dynamodbav:"phase,omitempty"`
}

type batterySpecItem struct {
	Chemistry   string  `dynamodbav:"chemistry,omitempty"`
	CapacityKwh float64 `dynamodbav:"capacity_kwh"`
	CycleLife   int     `dynamodbav:"cycle_life,omitempty"`
}

type mountingSpecItem struct {
	RoofType string `dynamodbav:"roof_type"`
	Material string `dynamodbav:"material,omitempty"`
}

type laborSpecItem struct {
	Unit string `dynamodbav:"unit"`
}

type productItem struct {
	ID          string  `dynamodbav:"id"`
	OrgID       string  `dynamodbav:"org_id"`
	Name        string  `dynamodbav:"name"`
	Description string  `dynamodbav:"description,omitempty"`
	Category    string  `dynamodbav:"category"`
	UnitPrice   float64 `dynamodbav:"unit_price"`
	Unit        string  `dynamodbav:"unit"`
	TaxRatePct  float64 `dynamodbav:"tax_rate_pct"`
	Active      bool    `dynamodbav:"active"`

	Panel    *panelSpecItem    `dynamodbav:"panel,omitempty"`
	Inverter *inverterSpecItem `dynamodbav:"inverter,omitempty"`
	Battery  *batterySpecItem  `dynamodbav:"battery,omitempty"`
	Mounting *mountingSpecItem `dynamodbav:"mounting,omitempty"`
	Labor    *laborSpecItem    `dynamodbav:"labor,omitempty"`
}

// ProductDynamoRepository reads catalog products from DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: org_id-index (PK: org_id)
//
// The quote service only reads; catalog maintenance writes through its own
// surface.

type ProductDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IProductRepository = (*ProductDynamoRepository)(nil)

func NewProductDynamoRepository(ddb *dynamodb.Client) *ProductDynamoRepository {
	return &ProductDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("PRODUCTS_TABLE", defaultProductsTableName),
	}
}

func (r *ProductDynamoRepository) ListActiveByOrgID(ctx context.Context, orgID string) ([]entities.Product, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(productsOrgIDIndex),
		KeyConditionExpression: aws.String("org_id = :oid"),
		FilterExpression:       aws.String("active = :active"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":oid":    &types.AttributeValueMemberS{Value: orgID},
			":active": &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if err != nil {
		return nil, err
	}

	products := make([]entities.Product, 0, len(out.Items))
	for _, raw := range out.Items {
		var it productItem
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return nil, err
		}
		products = append(products, fromProductItem(it))
	}
	return products, nil
}

func (r *ProductDynamoRepository) GetByID(ctx context.Context, id string) (entities.Product, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Product{}, err
	}
	if len(out.Item) == 0 {
		return entities.Product{}, nil
	}

	var it productItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Product{}, err
	}
	return fromProductItem(it), nil
}

func fromProductItem(it productItem) entities.Product {
	p := entities.Product{
		ID:          it.ID,
		OrgID:       it.OrgID,
		Name:        it.Name,
		Description: it.Description,
		Category:    entities.ProductCategory(it.Category),
		UnitPrice:   it.UnitPrice,
		Unit:        it.Unit,
		TaxRatePct:  it.TaxRatePct,
		Active:      it.Active,
	}
	if it.Panel != nil {
		p.Panel = &entities.PanelSpec{WattageW: it.Panel.WattageW, EfficiencyPct: it.Panel.EfficiencyPct}
	}
	if it.Inverter != nil {
		p.Inverter = &entities.InverterSpec{PowerKw: it.Inverter.PowerKw, MpptChannels: it.Inverter.MpptChannels, Phase: it.Inverter.Phase}
	}
	if it.Battery != nil {
		p.Battery = &entities.BatterySpec{Chemistry: it.Battery.Chemistry, CapacityKwh: it.Battery.CapacityKwh, CycleLife: it.Battery.CycleLife}
	}
	if it.Mounting != nil {
		p.Mounting = &entities.MountingSpec{RoofType: entities.RoofType(it.Mounting.RoofType), Material: it.Mounting.Material}
	}
	if it.Labor != nil {
		p.Labor = &entities.LaborSpec{Unit: entities.LaborUnit(it.Labor.Unit)}
	}
	return p
}
