package ddb

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"talkboard-backend/internal/repository"
)

// Helpers layers conveniences over the Store's public contract: pagination
// drains, chunked batches, and named atomic-update operations.
type Helpers struct {
	store  *Store
	logger *zap.Logger
}

// NewHelpers wraps a store.
func NewHelpers(store *Store, logger *zap.Logger) *Helpers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Helpers{store: store, logger: logger.Named("helpers")}
}

// Page is a request/response-shaped result page with an opaque continuation
// token.
type Page struct {
	Items     []repository.Item
	NextToken string
	HasMore   bool
}

// QueryAll drains every page of a query, following the last evaluated key
// until exhausted. Unbounded by design; callers needing a hard cap must
// layer a limit themselves.
func (h *Helpers) QueryAll(ctx context.Context, spec repository.QuerySpec) ([]repository.Item, error) {
	var items []repository.Item
	for {
		result, err := h.store.Query(ctx, spec)
		if err != nil {
			return nil, err
		}
		items = append(items, result.Items...)
		if len(result.LastEvaluatedKey) == 0 {
			return items, nil
		}
		spec.ExclusiveStartKey = result.LastEvaluatedKey
	}
}

// QueryPage runs a single page suitable for request/response pagination.
// The incoming token resumes a previous page; invalid tokens restart from
// the beginning.
func (h *Helpers) QueryPage(ctx context.Context, spec repository.QuerySpec, nextToken string) (*Page, error) {
	spec.ExclusiveStartKey = repository.DecodePageToken(nextToken)
	result, err := h.store.Query(ctx, spec)
	if err != nil {
		return nil, err
	}
	token := repository.EncodePageToken(result.LastEvaluatedKey)
	return &Page{
		Items:     result.Items,
		NextToken: token,
		HasMore:   token != "",
	}, nil
}

// BatchGetChunked splits an arbitrarily large key list into store-limit
// chunks and issues one batch call per chunk, sequentially.
func (h *Helpers) BatchGetChunked(ctx context.Context, keys []repository.Key, consistent bool) ([]repository.Item, error) {
	var items []repository.Item
	for _, chunk := range chunkKeys(keys, MaxBatchGetKeys) {
		page, err := h.store.BatchGet(ctx, chunk, consistent)
		if err != nil {
			return nil, err
		}
		items = append(items, page...)
	}
	return items, nil
}

// BatchWriteChunked splits puts and deletes into store-limit chunks,
// puts first, issuing one batch call per chunk sequentially.
func (h *Helpers) BatchWriteChunked(ctx context.Context, puts []repository.Item, deletes []repository.Key) error {
	for start := 0; start < len(puts); start += MaxBatchWriteItems {
		end := min(start+MaxBatchWriteItems, len(puts))
		if err := h.store.BatchWrite(ctx, puts[start:end], nil); err != nil {
			return err
		}
	}
	for _, chunk := range chunkKeys(deletes, MaxBatchWriteItems) {
		if err := h.store.BatchWrite(ctx, nil, chunk); err != nil {
			return err
		}
	}
	return nil
}

// ItemExists reports whether the key resolves to a live item. Existence
// checks deliberately never fail: any error reads as false.
func (h *Helpers) ItemExists(ctx context.Context, key repository.Key) bool {
	item, err := h.store.Get(ctx, key, false)
	if err != nil {
		h.logger.Debug("existence check failed",
			zap.String("pk", key.PK),
			zap.String("sk", key.SK),
			zap.Error(err),
		)
		return false
	}
	return item != nil
}

// IncrementAttribute atomically adds by to a numeric attribute, creating it
// when absent, and returns the new value.
func (h *Helpers) IncrementAttribute(ctx context.Context, key repository.Key, attr string, by int64) (int64, error) {
	item, err := h.store.Update(ctx, key, repository.UpdateSpec{
		Expression:      "ADD #attr :delta",
		ExpressionNames: map[string]string{"#attr": attr},
		ExpressionValues: map[string]types.AttributeValue{
			":delta": &types.AttributeValueMemberN{Value: strconv.FormatInt(by, 10)},
		},
	})
	if err != nil {
		return 0, err
	}
	if item == nil {
		return 0, fmt.Errorf("attribute %q missing from update result", attr)
	}
	value, ok := item.Attributes[attr]
	if !ok {
		return 0, fmt.Errorf("attribute %q missing from update result", attr)
	}
	switch n := value.(type) {
	case float64:
		return int64(n), nil
	case int64:
		return n, nil
	}
	return 0, fmt.Errorf("attribute %q is not numeric after increment", attr)
}

// AppendToList atomically appends values to a list attribute, creating the
// list when absent.
func (h *Helpers) AppendToList(ctx context.Context, key repository.Key, attr string, values []interface{}) error {
	list, err := attributevalue.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshal list values: %w", err)
	}
	_, err = h.store.Update(ctx, key, repository.UpdateSpec{
		Expression:      "SET #attr = list_append(if_not_exists(#attr, :empty), :values)",
		ExpressionNames: map[string]string{"#attr": attr},
		ExpressionValues: map[string]types.AttributeValue{
			":values": list,
			":empty":  &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
		},
	})
	return err
}

// AddToStringSet atomically adds members to a string-set attribute.
func (h *Helpers) AddToStringSet(ctx context.Context, key repository.Key, attr string, members []string) error {
	if len(members) == 0 {
		return nil
	}
	_, err := h.store.Update(ctx, key, repository.UpdateSpec{
		Expression:      "ADD #attr :members",
		ExpressionNames: map[string]string{"#attr": attr},
		ExpressionValues: map[string]types.AttributeValue{
			":members": &types.AttributeValueMemberSS{Value: members},
		},
	})
	return err
}

// RemoveFromStringSet atomically removes members from a string-set
// attribute.
func (h *Helpers) RemoveFromStringSet(ctx context.Context, key repository.Key, attr string, members []string) error {
	if len(members) == 0 {
		return nil
	}
	_, err := h.store.Update(ctx, key, repository.UpdateSpec{
		Expression:      "DELETE #attr :members",
		ExpressionNames: map[string]string{"#attr": attr},
		ExpressionValues: map[string]types.AttributeValue{
			":members": &types.AttributeValueMemberSS{Value: members},
		},
	})
	return err
}

// ScanByEntityType scans one page of items of a single entity type,
// excluding lazily-expired items.
func (h *Helpers) ScanByEntityType(ctx context.Context, entityType string, limit int32, nextToken string) (*Page, error) {
	expr, err := expression.NewBuilder().
		WithFilter(expression.Name(repository.AttrEntityType).Equal(expression.Value(entityType))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build entity type filter: %w", err)
	}

	result, err := h.store.Scan(ctx, repository.ScanSpec{
		Filter: &repository.BuiltExpression{
			Expression: *expr.Filter(),
			Names:      expr.Names(),
			Values:     expr.Values(),
		},
		Limit:             limit,
		ExclusiveStartKey: repository.DecodePageToken(nextToken),
		ExcludeExpired:    true,
	})
	if err != nil {
		return nil, err
	}
	token := repository.EncodePageToken(result.LastEvaluatedKey)
	return &Page{Items: result.Items, NextToken: token, HasMore: token != ""}, nil
}

func chunkKeys(keys []repository.Key, size int) [][]repository.Key {
	var chunks [][]repository.Key
	for start := 0; start < len(keys); start += size {
		end := min(start+size, len(keys))
		chunks = append(chunks, keys[start:end])
	}
	return chunks
}
