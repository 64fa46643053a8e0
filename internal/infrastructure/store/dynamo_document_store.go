package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/example/order-fulfillment/internal/apperr"
	"github.com/example/order-fulfillment/internal/delivery"
	"github.com/example/order-fulfillment/internal/domain/order"
)

type dynamoPutter interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoDocumentStore keeps delivery order documents in a DynamoDB table
// keyed by "id".
type DynamoDocumentStore struct {
	client    dynamoPutter
	tableName string
}

// dynamoDocument represents the DynamoDB item structure.
// Prices are stored as strings to keep decimal precision.
type dynamoDocument struct {
	ID            string            `dynamodbav:"id"`
	ShipToAddress dynamoAddress     `dynamodbav:"shipToAddress"`
	OrderItems    []dynamoOrderItem `dynamodbav:"orderItems"`
	FinalPrice    string            `dynamodbav:"finalPrice"`
}

type dynamoAddress struct {
	Street  string `dynamodbav:"street"`
	City    string `dynamodbav:"city"`
	State   string `dynamodbav:"state"`
	Country string `dynamodbav:"country"`
	ZipCode string `dynamodbav:"zipCode"`
}

type dynamoOrderItem struct {
	CatalogItemID int    `dynamodbav:"catalogItemId"`
	ProductName   string `dynamodbav:"productName"`
	PictureURI    string `dynamodbav:"pictureUri"`
	UnitPrice     string `dynamodbav:"unitPrice"`
	Units         int    `dynamodbav:"units"`
}

func NewDynamoDocumentStore(client dynamoPutter, tableName string) *DynamoDocumentStore {
	return &DynamoDocumentStore{
		client:    client,
		tableName: tableName,
	}
}

// WriteDocument stores doc. Ids are fresh UUIDs, so the write is
// conditional on the id being unused.
func (s *DynamoDocumentStore) WriteDocument(ctx context.Context, doc *delivery.Document) error {
	av, err := attributevalue.MarshalMap(toDynamoDocument(doc))
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return fmt.Errorf("put document %s: %w: %w", doc.ID, apperr.ErrPersistence, err)
	}
	return nil
}

func toDynamoDocument(doc *delivery.Document) dynamoDocument {
	items := make([]dynamoOrderItem, 0, len(doc.OrderItems))
	for _, item := range doc.OrderItems {
		items = append(items, toDynamoOrderItem(item))
	}
	addr := doc.ShipToAddress
	return dynamoDocument{
		ID: doc.ID,
		ShipToAddress: dynamoAddress{
			Street:  addr.Street,
			City:    addr.City,
			State:   addr.State,
			Country: addr.Country,
			ZipCode: addr.ZipCode,
		},
		OrderItems: items,
		FinalPrice: doc.FinalPrice.String(),
	}
}

func toDynamoOrderItem(item order.OrderItem) dynamoOrderItem {
	return dynamoOrderItem{
		CatalogItemID: item.ItemOrdered.CatalogItemID,
		ProductName:   item.ItemOrdered.ProductName,
		PictureURI:    item.ItemOrdered.PictureURI,
		UnitPrice:     item.UnitPrice.String(),
		Units:         item.Units,
	}
}
