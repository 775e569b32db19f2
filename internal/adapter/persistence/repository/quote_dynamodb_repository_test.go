package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"solarquote/internal/domain/entities"
	"solarquote/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo implements dynamoAPI with real compare-and-set semantics on the
// organization counter, so the sequencing transaction can be exercised under
// genuine goroutine contention.
type fakeDynamo struct {
	mu     sync.Mutex
	org    *organizationItem
	quotes map[string]map[string]types.AttributeValue

	// conflictsToInject fails that many transactions with a conditional
	// cancellation, bumping the counter as if a competing writer had won.
	conflictsToInject int
	transactCalls     int
}

func newFakeDynamo(org *organizationItem) *fakeDynamo {
	return &fakeDynamo{org: org, quotes: map[string]map[string]types.AttributeValue{}}
}

func conditionalCancellation() *types.TransactionCanceledException {
	code := "ConditionalCheckFailed"
	none := "None"
	return &types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{
			{Code: &code},
			{Code: &none},
		},
	}
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch *in.TableName {
	case defaultOrganizationsTableName:
		if f.org == nil {
			return &dynamodb.GetItemOutput{}, nil
		}
		av, err := attributevalue.MarshalMap(*f.org)
		if err != nil {
			return nil, err
		}
		return &dynamodb.GetItemOutput{Item: av}, nil
	case defaultQuotesTableName:
		key := in.Key["id"].(*types.AttributeValueMemberS).Value
		return &dynamodb.GetItemOutput{Item: f.quotes[key]}, nil
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := in.Item["id"].(*types.AttributeValueMemberS).Value
	f.quotes[key] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) Query(_ context.Context, _ *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	return &dynamodb.QueryOutput{}, nil
}

func (f *fakeDynamo) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transactCalls++

	if f.conflictsToInject > 0 {
		f.conflictsToInject--
		f.org.QuotesCount++ // the competing writer's increment
		return nil, conditionalCancellation()
	}

	update := in.TransactItems[0].Update
	observed := update.ExpressionAttributeValues[":observed"].(*types.AttributeValueMemberN).Value
	if observed != fmt.Sprintf("%d", f.org.QuotesCount) {
		return nil, conditionalCancellation()
	}

	put := in.TransactItems[1].Put
	key := put.Item["id"].(*types.AttributeValueMemberS).Value
	if _, exists := f.quotes[key]; exists {
		return nil, conditionalCancellation()
	}

	f.org.QuotesCount++
	f.quotes[key] = put.Item
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func testOrg(count int) *organizationItem {
	return &organizationItem{
		ID:          "org1",
		Name:        "Org One",
		QuotePrefix: "SLR",
		QuotesCount: count,
	}
}

func draftQuote(id string) entities.Quote {
	return entities.Quote{ID: id, OrgID: "org1", Status: entities.QuoteStatusDraft}
}

func TestCreateWithSequence_AssignsFormattedNumber(t *testing.T) {
	org := testOrg(41)
	repo := newQuoteDynamoRepository(newFakeDynamo(org))

	created, err := repo.CreateWithSequence(context.Background(), draftQuote("q-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Number != "SLR-00041" {
		t.Fatalf("number = %s, want SLR-00041", created.Number)
	}
	if org.QuotesCount != 42 {
		t.Fatalf("counter = %d, want 42", org.QuotesCount)
	}
}

func TestCreateWithSequence_HonorsStartingOffset(t *testing.T) {
	org := testOrg(0)
	org.QuoteStartNumber = 1000
	repo := newQuoteDynamoRepository(newFakeDynamo(org))

	created, err := repo.CreateWithSequence(context.Background(), draftQuote("q-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Number != "SLR-01000" {
		t.Fatalf("number = %s, want SLR-01000", created.Number)
	}
}

func TestCreateWithSequence_OrganizationMissing(t *testing.T) {
	repo := newQuoteDynamoRepository(newFakeDynamo(nil))

	_, err := repo.CreateWithSequence(context.Background(), draftQuote("q-1"))
	if !errors.Is(err, interfaces.ErrOrganizationNotFound) {
		t.Fatalf("expected ErrOrganizationNotFound, got %v", err)
	}
}

func TestCreateWithSequence_RetriesAfterLosingRace(t *testing.T) {
	org := testOrg(41)
	fake := newFakeDynamo(org)
	fake.conflictsToInject = 1 // the competitor takes 41
	repo := newQuoteDynamoRepository(fake)

	created, err := repo.CreateWithSequence(context.Background(), draftQuote("q-2"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Number != "SLR-00042" {
		t.Fatalf("number = %s, want SLR-00042 after observing the bumped counter", created.Number)
	}
	if fake.transactCalls != 2 {
		t.Fatalf("transact calls = %d, want 2 (one conflict, one success)", fake.transactCalls)
	}
}

func TestCreateWithSequence_ExhaustedRetries(t *testing.T) {
	fake := newFakeDynamo(testOrg(0))
	fake.conflictsToInject = maxSequenceAttempts
	repo := newQuoteDynamoRepository(fake)

	_, err := repo.CreateWithSequence(context.Background(), draftQuote("q-1"))
	if !errors.Is(err, interfaces.ErrQuoteNumberContention) {
		t.Fatalf("expected ErrQuoteNumberContention, got %v", err)
	}
}

func TestCreateWithSequence_ConcurrentCreationsGetUniqueNumbers(t *testing.T) {
	const writers = 8
	fake := newFakeDynamo(testOrg(0))
	repo := newQuoteDynamoRepository(fake)

	var wg sync.WaitGroup
	numbers := make(chan string, writers)
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			created, err := repo.CreateWithSequence(context.Background(), draftQuote(fmt.Sprintf("q-%d", i)))
			if err != nil {
				errs <- err
				return
			}
			numbers <- created.Number
		}(i)
	}
	wg.Wait()
	close(numbers)
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent create failed: %v", err)
	}

	seen := map[string]bool{}
	for n := range numbers {
		if seen[n] {
			t.Fatalf("duplicate sequence number %s", n)
		}
		seen[n] = true
	}
	if len(seen) != writers {
		t.Fatalf("got %d unique numbers, want %d", len(seen), writers)
	}
	if fake.org.QuotesCount != writers {
		t.Fatalf("counter = %d, want %d", fake.org.QuotesCount, writers)
	}
}

func TestQuoteItemRoundTrip(t *testing.T) {
	q := draftQuote("q-rt")
	q.Number = "SLR-00001"
	q.CustomerName = "Ana"
	q.Warnings = []string{"no inverter products available; add an inverter manually"}
	q.Sizing = &entities.SizingResult{ArrayKwp: 4.95, PanelCount: 9, PanelWattageW: 550}
	q.Sections = []entities.Section{
		{
			Name:     entities.SectionEquipment,
			Subtotal: 1620,
			Items: []entities.LineItem{{
				ID: "li-1", Name: "Panel 550W", Quantity: 10, UnitPrice: 180, TaxRatePct: 23,
				Discount: &entities.Discount{Type: entities.DiscountPercentage, Value: 10, Amount: 180},
				Subtotal: 1620, TaxAmount: 372.6, Total: 1992.6,
			}},
		},
	}
	q.QuoteTotals = entities.QuoteTotals{Subtotal: 1800, TotalDiscount: 180, TaxAmount: 372.6, Total: 1992.6}

	got := fromQuoteItem(toQuoteItem(q))

	if got.Number != q.Number || got.Status != q.Status || got.CustomerName != q.CustomerName {
		t.Fatalf("header fields drifted: %+v", got)
	}
	if got.Total != q.Total || got.Subtotal != q.Subtotal {
		t.Fatalf("totals drifted: %+v", got.QuoteTotals)
	}
	if len(got.Sections) != 1 || len(got.Sections[0].Items) != 1 {
		t.Fatalf("sections drifted: %+v", got.Sections)
	}
	li := got.Sections[0].Items[0]
	if li.Discount == nil || li.Discount.Amount != 180 || li.Total != 1992.6 {
		t.Fatalf("line item drifted: %+v", li)
	}
	if got.Sizing == nil || got.Sizing.PanelCount != 9 {
		t.Fatalf("sizing snapshot drifted: %+v", got.Sizing)
	}
}
