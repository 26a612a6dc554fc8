package ddb

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"talkboard-backend/internal/repository"
)

func newTestBreaker(client *mockClient, consecutive uint32) *BreakerStore {
	cfg := DefaultBreakerConfig()
	cfg.ConsecutiveFailures = consecutive
	return WithBreaker(newTestStore(client), cfg, zap.NewNop())
}

func TestBreakerStore(t *testing.T) {
	ctx := context.Background()
	key := repository.Key{PK: "POST#1", SK: "METADATA"}

	t.Run("passes results through while closed", func(t *testing.T) {
		client := &mockClient{
			getItemFn: func(in *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
				return &dynamodb.GetItemOutput{Item: keyAttributeValues(key)}, nil
			},
		}
		breaker := newTestBreaker(client, 3)

		item, err := breaker.Get(ctx, key, false)
		require.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, gobreaker.StateClosed, breaker.State())
	})

	t.Run("opens after consecutive infrastructure failures", func(t *testing.T) {
		client := &mockClient{
			getItemFn: func(in *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
				return nil, apiError("ServiceUnavailable")
			},
		}
		breaker := newTestBreaker(client, 2)

		for i := 0; i < 2; i++ {
			_, err := breaker.Get(ctx, key, false)
			require.Error(t, err)
		}
		assert.Equal(t, gobreaker.StateOpen, breaker.State())

		// Fails fast without reaching the client.
		before := len(client.getInputs)
		_, err := breaker.Get(ctx, key, false)
		require.Error(t, err)
		assert.Equal(t, before, len(client.getInputs))
	})

	t.Run("condition failures do not trip the circuit", func(t *testing.T) {
		client := &mockClient{
			putItemFn: func(in *dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error) {
				return nil, apiError("ConditionalCheckFailedException")
			},
		}
		breaker := newTestBreaker(client, 2)

		for i := 0; i < 5; i++ {
			err := breaker.Put(ctx, &repository.Item{PK: "POST#1", SK: "METADATA"}, "attribute_not_exists(PK)")
			require.Error(t, err)
			assert.True(t, repository.IsConditionalCheckFailed(err))
		}
		assert.Equal(t, gobreaker.StateClosed, breaker.State())
	})
}
