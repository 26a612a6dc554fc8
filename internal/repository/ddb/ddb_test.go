package ddb

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"talkboard-backend/internal/repository"
)

// mockClient implements DynamoDBAPI with per-method hooks. Unset hooks
// return empty outputs. Every call is recorded for input-shape assertions.
type mockClient struct {
	getItemFn       func(*dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error)
	putItemFn       func(*dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error)
	updateItemFn    func(*dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error)
	deleteItemFn    func(*dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error)
	queryFn         func(*dynamodb.QueryInput) (*dynamodb.QueryOutput, error)
	scanFn          func(*dynamodb.ScanInput) (*dynamodb.ScanOutput, error)
	batchGetFn      func(*dynamodb.BatchGetItemInput) (*dynamodb.BatchGetItemOutput, error)
	batchWriteFn    func(*dynamodb.BatchWriteItemInput) (*dynamodb.BatchWriteItemOutput, error)
	transactWriteFn func(*dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error)
	transactGetFn   func(*dynamodb.TransactGetItemsInput) (*dynamodb.TransactGetItemsOutput, error)

	getInputs           []*dynamodb.GetItemInput
	putInputs           []*dynamodb.PutItemInput
	updateInputs        []*dynamodb.UpdateItemInput
	deleteInputs        []*dynamodb.DeleteItemInput
	queryInputs         []*dynamodb.QueryInput
	scanInputs          []*dynamodb.ScanInput
	batchGetInputs      []*dynamodb.BatchGetItemInput
	batchWriteInputs    []*dynamodb.BatchWriteItemInput
	transactWriteInputs []*dynamodb.TransactWriteItemsInput
	transactGetInputs   []*dynamodb.TransactGetItemsInput
}

func (m *mockClient) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	m.getInputs = append(m.getInputs, in)
	if m.getItemFn != nil {
		return m.getItemFn(in)
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (m *mockClient) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.putInputs = append(m.putInputs, in)
	if m.putItemFn != nil {
		return m.putItemFn(in)
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockClient) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	m.updateInputs = append(m.updateInputs, in)
	if m.updateItemFn != nil {
		return m.updateItemFn(in)
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

func (m *mockClient) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	m.deleteInputs = append(m.deleteInputs, in)
	if m.deleteItemFn != nil {
		return m.deleteItemFn(in)
	}
	return &dynamodb.DeleteItemOutput{}, nil
}

func (m *mockClient) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.queryInputs = append(m.queryInputs, in)
	if m.queryFn != nil {
		return m.queryFn(in)
	}
	return &dynamodb.QueryOutput{}, nil
}

func (m *mockClient) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	m.scanInputs = append(m.scanInputs, in)
	if m.scanFn != nil {
		return m.scanFn(in)
	}
	return &dynamodb.ScanOutput{}, nil
}

func (m *mockClient) BatchGetItem(ctx context.Context, in *dynamodb.BatchGetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error) {
	m.batchGetInputs = append(m.batchGetInputs, in)
	if m.batchGetFn != nil {
		return m.batchGetFn(in)
	}
	return &dynamodb.BatchGetItemOutput{}, nil
}

func (m *mockClient) BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	m.batchWriteInputs = append(m.batchWriteInputs, in)
	if m.batchWriteFn != nil {
		return m.batchWriteFn(in)
	}
	return &dynamodb.BatchWriteItemOutput{}, nil
}

func (m *mockClient) TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	m.transactWriteInputs = append(m.transactWriteInputs, in)
	if m.transactWriteFn != nil {
		return m.transactWriteFn(in)
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func (m *mockClient) TransactGetItems(ctx context.Context, in *dynamodb.TransactGetItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactGetItemsOutput, error) {
	m.transactGetInputs = append(m.transactGetInputs, in)
	if m.transactGetFn != nil {
		return m.transactGetFn(in)
	}
	return &dynamodb.TransactGetItemsOutput{}, nil
}

func apiError(code string) error {
	return &smithy.GenericAPIError{Code: code, Message: code}
}

func fastRetry(maxRetries int) repository.RetryConfig {
	return repository.RetryConfig{
		MaxRetries:    maxRetries,
		BaseDelay:     time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
	}
}

func newTestStore(client *mockClient) *Store {
	return NewStore(client, "talkboard-test", fastRetry(2), zap.NewNop())
}

func stringAttr(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}

func TestStoreGet(t *testing.T) {
	ctx := context.Background()
	key := repository.Key{PK: "POST#1", SK: "METADATA"}

	t.Run("absent item returns nil without error", func(t *testing.T) {
		client := &mockClient{}
		store := newTestStore(client)

		item, err := store.Get(ctx, key, false)
		require.NoError(t, err)
		assert.Nil(t, item)

		require.Len(t, client.getInputs, 1)
		in := client.getInputs[0]
		assert.Equal(t, "talkboard-test", *in.TableName)
		assert.Equal(t, stringAttr("POST#1"), in.Key["PK"])
		assert.False(t, *in.ConsistentRead)
	})

	t.Run("found item carries payload attributes", func(t *testing.T) {
		client := &mockClient{
			getItemFn: func(in *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
				return &dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
					"PK":         stringAttr("POST#1"),
					"SK":         stringAttr("METADATA"),
					"EntityType": stringAttr("POST"),
					"title":      stringAttr("hello world"),
					"upvotes":    &types.AttributeValueMemberN{Value: "3"},
				}}, nil
			},
		}
		store := newTestStore(client)

		item, err := store.Get(ctx, key, true)
		require.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, "POST", item.EntityType)
		assert.Equal(t, "hello world", item.Attributes["title"])
		assert.Equal(t, float64(3), item.Attributes["upvotes"])
		assert.NotContains(t, item.Attributes, "PK")

		assert.True(t, *client.getInputs[0].ConsistentRead)
	})

	t.Run("lazily expired item reads as absent", func(t *testing.T) {
		client := &mockClient{
			getItemFn: func(in *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
				return &dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
					"PK":  stringAttr("POST#1"),
					"SK":  stringAttr("METADATA"),
					"ttl": &types.AttributeValueMemberN{Value: "1000"},
				}}, nil
			},
		}
		store := newTestStore(client)
		store.now = func() time.Time { return time.Unix(2000, 0) }

		item, err := store.Get(ctx, key, false)
		require.NoError(t, err)
		assert.Nil(t, item)
	})

	t.Run("retries throttling then succeeds", func(t *testing.T) {
		calls := 0
		client := &mockClient{
			getItemFn: func(in *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
				calls++
				if calls == 1 {
					return nil, apiError("ThrottlingException")
				}
				return &dynamodb.GetItemOutput{}, nil
			},
		}
		store := newTestStore(client)

		_, err := store.Get(ctx, key, false)
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("exhausted retries surface a classified error", func(t *testing.T) {
		client := &mockClient{
			getItemFn: func(in *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
				return nil, apiError("ServiceUnavailable")
			},
		}
		store := newTestStore(client)

		_, err := store.Get(ctx, key, false)
		require.Error(t, err)
		assert.Equal(t, repository.KindServiceUnavailable, repository.KindOf(err))
		assert.Len(t, client.getInputs, 3)

		var dae *repository.DataAccessError
		require.ErrorAs(t, err, &dae)
		assert.Equal(t, "GetItem", dae.Operation)
		assert.Equal(t, "talkboard-test", dae.Context.Table)
		require.NotNil(t, dae.Context.Key)
		assert.Equal(t, key, *dae.Context.Key)
	})
}

func TestStorePut(t *testing.T) {
	ctx := context.Background()

	t.Run("flattens payload and refreshes timestamps", func(t *testing.T) {
		client := &mockClient{}
		store := newTestStore(client)
		store.now = func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }

		item := &repository.Item{
			PK: "POST#1", SK: "METADATA", EntityType: "POST",
			Attributes: map[string]interface{}{"title": "hello"},
		}
		require.NoError(t, store.Put(ctx, item, ""))

		require.Len(t, client.putInputs, 1)
		stored := client.putInputs[0].Item
		assert.Equal(t, stringAttr("hello"), stored["title"])
		assert.Equal(t, stringAttr("2026-08-01T12:00:00Z"), stored["CreatedAt"])
		assert.Equal(t, stringAttr("2026-08-01T12:00:00Z"), stored["UpdatedAt"])
		assert.Nil(t, client.putInputs[0].ConditionExpression)
	})

	t.Run("condition expression gates the write", func(t *testing.T) {
		client := &mockClient{}
		store := newTestStore(client)

		item := &repository.Item{PK: "POST#1", SK: "METADATA"}
		require.NoError(t, store.Put(ctx, item, "attribute_not_exists(PK)"))

		assert.Equal(t, "attribute_not_exists(PK)", *client.putInputs[0].ConditionExpression)
	})

	t.Run("failed condition is terminal and not retried", func(t *testing.T) {
		client := &mockClient{
			putItemFn: func(in *dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error) {
				return nil, apiError("ConditionalCheckFailedException")
			},
		}
		store := newTestStore(client)

		err := store.Put(ctx, &repository.Item{PK: "POST#1", SK: "METADATA"}, "attribute_not_exists(PK)")
		require.Error(t, err)
		assert.True(t, repository.IsConditionalCheckFailed(err))
		assert.Len(t, client.putInputs, 1)
	})

	t.Run("rejects payload attributes that collide with managed fields", func(t *testing.T) {
		client := &mockClient{}
		store := newTestStore(client)

		err := store.Put(ctx, &repository.Item{
			PK: "POST#1", SK: "METADATA",
			Attributes: map[string]interface{}{"PK": "sneaky"},
		}, "")
		require.Error(t, err)
		assert.Empty(t, client.putInputs)
	})
}

func TestStoreUpdate(t *testing.T) {
	ctx := context.Background()
	key := repository.Key{PK: "POST#1", SK: "METADATA"}

	t.Run("built expression splices in the updatedAt refresh", func(t *testing.T) {
		client := &mockClient{
			updateItemFn: func(in *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
				return &dynamodb.UpdateItemOutput{Attributes: map[string]types.AttributeValue{
					"PK": stringAttr("POST#1"), "SK": stringAttr("METADATA"),
					"title": stringAttr("updated"),
				}}, nil
			},
		}
		store := newTestStore(client)

		item, err := store.Update(ctx, key, repository.UpdateSpec{
			Values: map[string]interface{}{"title": "updated", "draft": nil},
		})
		require.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, "updated", item.Attributes["title"])

		in := client.updateInputs[0]
		assert.Equal(t, types.ReturnValueAllNew, in.ReturnValues)
		assert.Equal(t, "SET #updatedAt = :updatedAt, #u1 = :u1 REMOVE #u0", *in.UpdateExpression)
		assert.Equal(t, "UpdatedAt", in.ExpressionAttributeNames["#updatedAt"])
		assert.Equal(t, "draft", in.ExpressionAttributeNames["#u0"])
		assert.Equal(t, "title", in.ExpressionAttributeNames["#u1"])
	})

	t.Run("raw expression override still refreshes updatedAt", func(t *testing.T) {
		client := &mockClient{
			updateItemFn: func(in *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
				return &dynamodb.UpdateItemOutput{Attributes: map[string]types.AttributeValue{
					"PK": stringAttr("POST#1"), "SK": stringAttr("METADATA"),
				}}, nil
			},
		}
		store := newTestStore(client)

		_, err := store.Update(ctx, key, repository.UpdateSpec{
			Expression:      "ADD #n :one",
			ExpressionNames: map[string]string{"#n": "upvotes"},
			ExpressionValues: map[string]types.AttributeValue{
				":one": &types.AttributeValueMemberN{Value: "1"},
			},
		})
		require.NoError(t, err)

		expr := *client.updateInputs[0].UpdateExpression
		assert.Equal(t, "ADD #n :one SET #updatedAt = :updatedAt", expr)
	})

	t.Run("condition maps merge into the request", func(t *testing.T) {
		client := &mockClient{
			updateItemFn: func(in *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
				return &dynamodb.UpdateItemOutput{}, nil
			},
		}
		store := newTestStore(client)

		_, err := store.Update(ctx, key, repository.UpdateSpec{
			Values:          map[string]interface{}{"title": "x"},
			Condition:       "#ver = :expected",
			ConditionNames:  map[string]string{"#ver": "version"},
			ConditionValues: map[string]types.AttributeValue{":expected": &types.AttributeValueMemberN{Value: "3"}},
		})
		require.NoError(t, err)

		in := client.updateInputs[0]
		assert.Equal(t, "#ver = :expected", *in.ConditionExpression)
		assert.Equal(t, "version", in.ExpressionAttributeNames["#ver"])
		assert.Contains(t, in.ExpressionAttributeValues, ":expected")
	})

	t.Run("empty spec is rejected locally", func(t *testing.T) {
		client := &mockClient{}
		store := newTestStore(client)

		_, err := store.Update(ctx, key, repository.UpdateSpec{})
		require.Error(t, err)
		assert.Empty(t, client.updateInputs)
	})
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	key := repository.Key{PK: "POST#1", SK: "METADATA"}

	t.Run("returns the old item", func(t *testing.T) {
		client := &mockClient{
			deleteItemFn: func(in *dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error) {
				return &dynamodb.DeleteItemOutput{Attributes: map[string]types.AttributeValue{
					"PK": stringAttr("POST#1"), "SK": stringAttr("METADATA"),
					"title": stringAttr("gone"),
				}}, nil
			},
		}
		store := newTestStore(client)

		item, err := store.Delete(ctx, key, "")
		require.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, "gone", item.Attributes["title"])
		assert.Equal(t, types.ReturnValueAllOld, client.deleteInputs[0].ReturnValues)
	})

	t.Run("deleting a missing item returns nil", func(t *testing.T) {
		client := &mockClient{}
		store := newTestStore(client)

		item, err := store.Delete(ctx, key, "")
		require.NoError(t, err)
		assert.Nil(t, item)
	})
}

func TestStoreQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("builds the key condition from the spec", func(t *testing.T) {
		client := &mockClient{}
		store := newTestStore(client)

		_, err := store.Query(ctx, repository.QuerySpec{
			PartitionKey: "BOARD#golang",
			Sort:         &repository.SortCondition{Operator: repository.OpBeginsWith, Values: []string{"POST#"}},
			Limit:        10,
			Descending:   true,
		})
		require.NoError(t, err)

		in := client.queryInputs[0]
		assert.Equal(t, "#pk = :pk AND begins_with(#sk, :sk)", *in.KeyConditionExpression)
		assert.Equal(t, "PK", in.ExpressionAttributeNames["#pk"])
		assert.Equal(t, "SK", in.ExpressionAttributeNames["#sk"])
		assert.Equal(t, stringAttr("BOARD#golang"), in.ExpressionAttributeValues[":pk"])
		assert.Equal(t, stringAttr("POST#"), in.ExpressionAttributeValues[":sk"])
		assert.Equal(t, int32(10), *in.Limit)
		assert.False(t, *in.ScanIndexForward)
		assert.Nil(t, in.IndexName)
	})

	t.Run("index queries use index key attributes and drop consistency", func(t *testing.T) {
		client := &mockClient{}
		store := newTestStore(client)

		_, err := store.Query(ctx, repository.QuerySpec{
			PartitionKey: "USER#alice",
			IndexName:    repository.IndexGSI1,
		})
		require.NoError(t, err)

		in := client.queryInputs[0]
		assert.Equal(t, "GSI1", *in.IndexName)
		assert.Equal(t, "GSI1PK", in.ExpressionAttributeNames["#pk"])
		assert.Nil(t, in.ConsistentRead)
	})

	t.Run("filter and ttl exclusion merge into the request", func(t *testing.T) {
		client := &mockClient{}
		store := newTestStore(client)
		store.now = func() time.Time { return time.Unix(5000, 0) }

		filter, err := repository.BuildFilterExpression(map[string]interface{}{"entityType": "POST"}, nil)
		require.NoError(t, err)

		_, err = store.Query(ctx, repository.QuerySpec{
			PartitionKey:   "BOARD#golang",
			Filter:         filter,
			ExcludeExpired: true,
		})
		require.NoError(t, err)

		in := client.queryInputs[0]
		require.NotNil(t, in.FilterExpression)
		assert.Contains(t, *in.FilterExpression, "#f0 = :f0")
		assert.Contains(t, *in.FilterExpression, "attribute_not_exists(#ttlAttr) OR #ttlAttr > :ttlNow")
		assert.Equal(t, "ttl", in.ExpressionAttributeNames["#ttlAttr"])
		assert.Equal(t, &types.AttributeValueMemberN{Value: "5000"}, in.ExpressionAttributeValues[":ttlNow"])
	})

	t.Run("invalid spec fails before any network call", func(t *testing.T) {
		client := &mockClient{}
		store := newTestStore(client)

		_, err := store.Query(ctx, repository.QuerySpec{})
		require.Error(t, err)
		assert.Empty(t, client.queryInputs)
	})

	t.Run("passes the last evaluated key through", func(t *testing.T) {
		lastKey := map[string]types.AttributeValue{
			"PK": stringAttr("BOARD#golang"), "SK": stringAttr("POST#9"),
		}
		client := &mockClient{
			queryFn: func(in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
				return &dynamodb.QueryOutput{
					Items: []map[string]types.AttributeValue{
						{"PK": stringAttr("BOARD#golang"), "SK": stringAttr("POST#9")},
					},
					LastEvaluatedKey: lastKey,
				}, nil
			},
		}
		store := newTestStore(client)

		result, err := store.Query(ctx, repository.QuerySpec{PartitionKey: "BOARD#golang"})
		require.NoError(t, err)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, lastKey, result.LastEvaluatedKey)
	})
}

func TestStoreScan(t *testing.T) {
	ctx := context.Background()

	t.Run("segments pass through for parallel fan-out", func(t *testing.T) {
		client := &mockClient{}
		store := newTestStore(client)

		_, err := store.Scan(ctx, repository.ScanSpec{
			Segment:       aws.Int32(1),
			TotalSegments: aws.Int32(4),
		})
		require.NoError(t, err)

		in := client.scanInputs[0]
		assert.Equal(t, int32(1), *in.Segment)
		assert.Equal(t, int32(4), *in.TotalSegments)
	})

	t.Run("rejects unknown index", func(t *testing.T) {
		client := &mockClient{}
		store := newTestStore(client)

		_, err := store.Scan(ctx, repository.ScanSpec{IndexName: "GSI9"})
		require.Error(t, err)
		assert.Empty(t, client.scanInputs)
	})
}

func TestStoreBatchGet(t *testing.T) {
	ctx := context.Background()

	t.Run("size limit enforced locally", func(t *testing.T) {
		keys := make([]repository.Key, MaxBatchGetKeys+1)
		for i := range keys {
			keys[i] = repository.Key{PK: "POST#1", SK: "COMMENT#" + string(rune('a'+i%26))}
		}
		client := &mockClient{}
		store := newTestStore(client)

		_, err := store.BatchGet(ctx, keys, false)
		require.Error(t, err)
		assert.Empty(t, client.batchGetInputs)
	})

	t.Run("drains unprocessed keys", func(t *testing.T) {
		calls := 0
		client := &mockClient{}
		client.batchGetFn = func(in *dynamodb.BatchGetItemInput) (*dynamodb.BatchGetItemOutput, error) {
			calls++
			if calls == 1 {
				requested := in.RequestItems["talkboard-test"].Keys
				return &dynamodb.BatchGetItemOutput{
					Responses: map[string][]map[string]types.AttributeValue{
						"talkboard-test": {{"PK": stringAttr("POST#1"), "SK": stringAttr("METADATA")}},
					},
					UnprocessedKeys: map[string]types.KeysAndAttributes{
						"talkboard-test": {Keys: requested[1:]},
					},
				}, nil
			}
			return &dynamodb.BatchGetItemOutput{
				Responses: map[string][]map[string]types.AttributeValue{
					"talkboard-test": {{"PK": stringAttr("POST#2"), "SK": stringAttr("METADATA")}},
				},
			}, nil
		}
		store := newTestStore(client)

		items, err := store.BatchGet(ctx, []repository.Key{
			{PK: "POST#1", SK: "METADATA"},
			{PK: "POST#2", SK: "METADATA"},
		}, false)
		require.NoError(t, err)
		assert.Len(t, items, 2)
		assert.Equal(t, 2, calls)
	})

	t.Run("empty key list short-circuits", func(t *testing.T) {
		client := &mockClient{}
		store := newTestStore(client)

		items, err := store.BatchGet(ctx, nil, false)
		require.NoError(t, err)
		assert.Nil(t, items)
		assert.Empty(t, client.batchGetInputs)
	})
}

func TestStoreBatchWrite(t *testing.T) {
	ctx := context.Background()

	t.Run("mixes puts and deletes in one request", func(t *testing.T) {
		client := &mockClient{}
		store := newTestStore(client)

		puts := []repository.Item{{PK: "POST#1", SK: "METADATA"}}
		deletes := []repository.Key{{PK: "POST#2", SK: "METADATA"}}
		require.NoError(t, store.BatchWrite(ctx, puts, deletes))

		requests := client.batchWriteInputs[0].RequestItems["talkboard-test"]
		require.Len(t, requests, 2)
		assert.NotNil(t, requests[0].PutRequest)
		assert.NotNil(t, requests[1].DeleteRequest)
	})

	t.Run("size limit enforced locally", func(t *testing.T) {
		puts := make([]repository.Item, MaxBatchWriteItems+1)
		for i := range puts {
			puts[i] = repository.Item{PK: "POST#1", SK: "METADATA"}
		}
		client := &mockClient{}
		store := newTestStore(client)

		err := store.BatchWrite(ctx, puts, nil)
		require.Error(t, err)
		assert.Empty(t, client.batchWriteInputs)
	})

	t.Run("drains unprocessed items", func(t *testing.T) {
		calls := 0
		client := &mockClient{}
		client.batchWriteFn = func(in *dynamodb.BatchWriteItemInput) (*dynamodb.BatchWriteItemOutput, error) {
			calls++
			if calls == 1 {
				pending := in.RequestItems["talkboard-test"]
				return &dynamodb.BatchWriteItemOutput{
					UnprocessedItems: map[string][]types.WriteRequest{
						"talkboard-test": pending[1:],
					},
				}, nil
			}
			return &dynamodb.BatchWriteItemOutput{}, nil
		}
		store := newTestStore(client)

		err := store.BatchWrite(ctx, []repository.Item{
			{PK: "POST#1", SK: "METADATA"},
			{PK: "POST#2", SK: "METADATA"},
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.Len(t, client.batchWriteInputs[1].RequestItems["talkboard-test"], 1)
	})
}

func TestStoreTransactWrite(t *testing.T) {
	ctx := context.Background()
	key := repository.Key{PK: "POST#1", SK: "METADATA"}

	t.Run("builds the wire shapes for every union member", func(t *testing.T) {
		client := &mockClient{}
		store := newTestStore(client)

		err := store.TransactWrite(ctx, []repository.TransactionItem{
			{Put: &repository.TransactPut{Item: &repository.Item{PK: "POST#2", SK: "METADATA"}}},
			{Update: &repository.TransactUpdate{Key: key, Update: repository.UpdateSpec{
				Values: map[string]interface{}{"title": "x"},
			}}},
			{Delete: &repository.TransactDelete{Key: repository.Key{PK: "POST#3", SK: "METADATA"}}},
			{ConditionCheck: &repository.TransactConditionCheck{
				Key: key, Condition: "attribute_exists(PK)",
			}},
		})
		require.NoError(t, err)

		in := client.transactWriteInputs[0]
		require.Len(t, in.TransactItems, 4)
		assert.NotNil(t, in.TransactItems[0].Put)
		assert.NotNil(t, in.TransactItems[1].Update)
		assert.NotNil(t, in.TransactItems[2].Delete)
		assert.NotNil(t, in.TransactItems[3].ConditionCheck)
		require.NotNil(t, in.ClientRequestToken)
		assert.NotEmpty(t, *in.ClientRequestToken)
	})

	t.Run("a failed condition cancels the whole batch", func(t *testing.T) {
		client := &mockClient{
			transactWriteFn: func(in *dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error) {
				return nil, apiError("TransactionCanceledException")
			},
		}
		store := newTestStore(client)

		err := store.TransactWrite(ctx, []repository.TransactionItem{
			{ConditionCheck: &repository.TransactConditionCheck{Key: key, Condition: "attribute_exists(PK)"}},
			{Put: &repository.TransactPut{Item: &repository.Item{PK: "POST#2", SK: "METADATA"}}},
		})
		require.Error(t, err)
		assert.True(t, repository.IsTransactionCanceled(err))
		assert.Len(t, client.transactWriteInputs, 1)
	})

	t.Run("malformed union members fail before any network call", func(t *testing.T) {
		client := &mockClient{}
		store := newTestStore(client)

		err := store.TransactWrite(ctx, []repository.TransactionItem{{}})
		require.Error(t, err)
		assert.Empty(t, client.transactWriteInputs)
	})
}

func TestStoreTransactGet(t *testing.T) {
	ctx := context.Background()

	t.Run("reads a consistent snapshot, skipping missing keys", func(t *testing.T) {
		client := &mockClient{
			transactGetFn: func(in *dynamodb.TransactGetItemsInput) (*dynamodb.TransactGetItemsOutput, error) {
				return &dynamodb.TransactGetItemsOutput{
					Responses: []types.ItemResponse{
						{Item: map[string]types.AttributeValue{
							"PK": stringAttr("POST#1"), "SK": stringAttr("METADATA"),
						}},
						{Item: nil},
					},
				}, nil
			},
		}
		store := newTestStore(client)

		items, err := store.TransactGet(ctx, []repository.Key{
			{PK: "POST#1", SK: "METADATA"},
			{PK: "POST#404", SK: "METADATA"},
		})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "POST#1", items[0].PK)
		assert.Len(t, client.transactGetInputs[0].TransactItems, 2)
	})
}
