package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bbernstein/tidetimes/internal/models"
	"github.com/rs/zerolog/log"
)

// DynamoLocationStore keeps the last station each client looked at.
type DynamoLocationStore struct {
	client    DynamoDBClient
	tableName string
	clock     clock
}

var _ models.LocationStore = (*DynamoLocationStore)(nil)

func NewDynamoLocationStore(client DynamoDBClient, tableName string) *DynamoLocationStore {
	return &DynamoLocationStore{
		client:    client,
		tableName: tableName,
		clock:     systemClock{},
	}
}

// GetLocation returns nil without error when the client has nothing saved.
func (s *DynamoLocationStore) GetLocation(ctx context.Context, clientID string) (*models.SavedLocation, error) {
	if clientID == "" {
		return nil, fmt.Errorf("client ID is required")
	}

	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"clientId": &types.AttributeValueMemberS{Value: clientID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("getting location from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, nil
	}

	var location models.SavedLocation
	if err := attributevalue.UnmarshalMap(result.Item, &location); err != nil {
		return nil, fmt.Errorf("unmarshaling saved location: %w", err)
	}

	return &location, nil
}

// SaveLocation overwrites the client's saved location and stamps UpdatedAt.
func (s *DynamoLocationStore) SaveLocation(ctx context.Context, location models.SavedLocation) error {
	if err := location.Validate(); err != nil {
		return fmt.Errorf("invalid location: %w", err)
	}

	location.UpdatedAt = s.clock.Now().UnixMilli()

	item, err := attributevalue.MarshalMap(location)
	if err != nil {
		return fmt.Errorf("marshaling saved location: %w", err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("putting location in DynamoDB: %w", err)
	}

	log.Debug().
		Str("client_id", location.ClientID).
		Str("station_id", location.StationID).
		Msg("Saved last location")

	return nil
}

// MemoryLocationStore is an in-process LocationStore for local runs and tests.
type MemoryLocationStore struct {
	locations map[string]models.SavedLocation
	clock     clock
	mu        sync.RWMutex
}

var _ models.LocationStore = (*MemoryLocationStore)(nil)

func NewMemoryLocationStore() *MemoryLocationStore {
	return &MemoryLocationStore{
		locations: make(map[string]models.SavedLocation),
		clock:     systemClock{},
	}
}

func (s *MemoryLocationStore) GetLocation(_ context.Context, clientID string) (*models.SavedLocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	location, ok := s.locations[clientID]
	if !ok {
		return nil, nil
	}
	return &location, nil
}

func (s *MemoryLocationStore) SaveLocation(_ context.Context, location models.SavedLocation) error {
	if err := location.Validate(); err != nil {
		return fmt.Errorf("invalid location: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	location.UpdatedAt = s.clock.Now().UnixMilli()
	s.locations[location.ClientID] = location
	return nil
}
