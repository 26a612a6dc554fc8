// Package ddb implements the data-access service over AWS DynamoDB.
// This is the only layer with knowledge of DynamoDB request shapes; callers
// work with the repository package's types and classified errors.
package ddb

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"talkboard-backend/internal/repository"
)

// Store-protocol limits per call.
const (
	MaxBatchGetKeys     = 100
	MaxBatchWriteItems  = 25
	MaxTransactionItems = 100
	MaxTransactGetItems = 100
)

// DynamoDBAPI is the subset of the DynamoDB client used by the store.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	TransactGetItems(ctx context.Context, params *dynamodb.TransactGetItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactGetItemsOutput, error)
}

// Store is the stateless data-access façade. It owns no item state; the
// client holding credentials and the connection pool is immutable and safely
// shared across concurrent callers.
type Store struct {
	client    DynamoDBAPI
	tableName string
	executor  *repository.Executor
	logger    *zap.Logger
	now       func() time.Time
}

// NewStore creates a data-access service for one table.
func NewStore(client DynamoDBAPI, tableName string, retry repository.RetryConfig, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		client:    client,
		tableName: tableName,
		executor:  repository.NewExecutor(retry, logger),
		logger:    logger.Named("ddb"),
		now:       time.Now,
	}
}

// TableName returns the table this store addresses.
func (s *Store) TableName() string {
	return s.tableName
}

// QueryResult is one page of query or scan results.
type QueryResult struct {
	Items            []repository.Item
	LastEvaluatedKey map[string]types.AttributeValue
}

// Get retrieves a single item, nil when absent. Items whose TTL has passed
// are treated as absent even before the store sweeps them.
func (s *Store) Get(ctx context.Context, key repository.Key, consistent bool) (*repository.Item, error) {
	opCtx := repository.OperationContext{Table: s.tableName, Key: &key}

	var out *dynamodb.GetItemOutput
	err := s.executor.Do(ctx, "GetItem", func() error {
		var err error
		out, err = s.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName:      aws.String(s.tableName),
			Key:            keyAttributeValues(key),
			ConsistentRead: aws.Bool(consistent),
		})
		return err
	})
	if err != nil {
		return nil, repository.NewDataAccessError("GetItem", opCtx, err)
	}
	if out.Item == nil {
		return nil, nil
	}
	item, err := unmarshalItem(out.Item)
	if err != nil {
		return nil, repository.NewDataAccessError("GetItem", opCtx, err)
	}
	if item.Expired(s.now()) {
		return nil, nil
	}
	return item, nil
}

// Put writes an item, refreshing its timestamps. A non-empty condition
// expression gates the write server-side.
func (s *Store) Put(ctx context.Context, item *repository.Item, condition string) error {
	key := item.Key()
	opCtx := repository.OperationContext{Table: s.tableName, Key: &key}

	item.TouchTimestamps(s.now())
	av, err := marshalItem(item)
	if err != nil {
		return repository.NewDataAccessError("PutItem", opCtx, err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	}
	if condition != "" {
		input.ConditionExpression = aws.String(condition)
	}

	err = s.executor.Do(ctx, "PutItem", func() error {
		_, err := s.client.PutItem(ctx, input)
		return err
	})
	if err != nil {
		return repository.NewDataAccessError("PutItem", opCtx, err)
	}
	return nil
}

// Update applies an UpdateSpec to one item and returns the post-update item.
// A failed condition surfaces as the terminal CONDITIONAL_CHECK_FAILED kind,
// distinct from all other failures.
func (s *Store) Update(ctx context.Context, key repository.Key, spec repository.UpdateSpec) (*repository.Item, error) {
	opCtx := repository.OperationContext{Table: s.tableName, Key: &key}

	input, err := s.buildUpdateInput(key, spec)
	if err != nil {
		return nil, repository.NewDataAccessError("UpdateItem", opCtx, err)
	}

	var out *dynamodb.UpdateItemOutput
	err = s.executor.Do(ctx, "UpdateItem", func() error {
		var err error
		out, err = s.client.UpdateItem(ctx, input)
		return err
	})
	if err != nil {
		return nil, repository.NewDataAccessError("UpdateItem", opCtx, err)
	}
	if out.Attributes == nil {
		return nil, nil
	}
	item, err := unmarshalItem(out.Attributes)
	if err != nil {
		return nil, repository.NewDataAccessError("UpdateItem", opCtx, err)
	}
	return item, nil
}

// Delete removes one item and returns the old item, nil when it did not
// exist.
func (s *Store) Delete(ctx context.Context, key repository.Key, condition string) (*repository.Item, error) {
	opCtx := repository.OperationContext{Table: s.tableName, Key: &key}

	input := &dynamodb.DeleteItemInput{
		TableName:    aws.String(s.tableName),
		Key:          keyAttributeValues(key),
		ReturnValues: types.ReturnValueAllOld,
	}
	if condition != "" {
		input.ConditionExpression = aws.String(condition)
	}

	var out *dynamodb.DeleteItemOutput
	err := s.executor.Do(ctx, "DeleteItem", func() error {
		var err error
		out, err = s.client.DeleteItem(ctx, input)
		return err
	})
	if err != nil {
		return nil, repository.NewDataAccessError("DeleteItem", opCtx, err)
	}
	if out.Attributes == nil {
		return nil, nil
	}
	item, err := unmarshalItem(out.Attributes)
	if err != nil {
		return nil, repository.NewDataAccessError("DeleteItem", opCtx, err)
	}
	return item, nil
}

// Query returns one page of items from a partition, on the base table or a
// GSI.
func (s *Store) Query(ctx context.Context, spec repository.QuerySpec) (*QueryResult, error) {
	opCtx := repository.OperationContext{Table: s.tableName, Index: spec.IndexName}

	if err := spec.Validate(); err != nil {
		return nil, repository.NewDataAccessError("Query", opCtx, err)
	}
	input, err := s.buildQueryInput(spec)
	if err != nil {
		return nil, repository.NewDataAccessError("Query", opCtx, err)
	}

	var out *dynamodb.QueryOutput
	err = s.executor.Do(ctx, "Query", func() error {
		var err error
		out, err = s.client.Query(ctx, input)
		return err
	})
	if err != nil {
		return nil, repository.NewDataAccessError("Query", opCtx, err)
	}
	items, err := unmarshalItems(out.Items)
	if err != nil {
		return nil, repository.NewDataAccessError("Query", opCtx, err)
	}
	return &QueryResult{Items: items, LastEvaluatedKey: out.LastEvaluatedKey}, nil
}

// Scan returns one page of a table or index scan. Segment/TotalSegments
// support caller-driven parallel fan-out.
func (s *Store) Scan(ctx context.Context, spec repository.ScanSpec) (*QueryResult, error) {
	opCtx := repository.OperationContext{Table: s.tableName, Index: spec.IndexName}

	input := &dynamodb.ScanInput{
		TableName:         aws.String(s.tableName),
		ExclusiveStartKey: spec.ExclusiveStartKey,
		Segment:           spec.Segment,
		TotalSegments:     spec.TotalSegments,
	}
	if spec.IndexName != "" {
		if _, _, err := repository.IndexKeyAttributes(spec.IndexName); err != nil {
			return nil, repository.NewDataAccessError("Scan", opCtx, err)
		}
		input.IndexName = aws.String(spec.IndexName)
	}
	if spec.Limit > 0 {
		input.Limit = aws.Int32(spec.Limit)
	}
	if filter := s.effectiveFilter(spec.Filter, spec.ExcludeExpired); !filter.Empty() {
		input.FilterExpression = aws.String(filter.Expression)
		input.ExpressionAttributeNames = filter.Names
		input.ExpressionAttributeValues = filter.Values
	}

	var out *dynamodb.ScanOutput
	err := s.executor.Do(ctx, "Scan", func() error {
		var err error
		out, err = s.client.Scan(ctx, input)
		return err
	})
	if err != nil {
		return nil, repository.NewDataAccessError("Scan", opCtx, err)
	}
	items, err := unmarshalItems(out.Items)
	if err != nil {
		return nil, repository.NewDataAccessError("Scan", opCtx, err)
	}
	return &QueryResult{Items: items, LastEvaluatedKey: out.LastEvaluatedKey}, nil
}

// BatchGet reads up to MaxBatchGetKeys items. Keys the store leaves
// unprocessed under load are re-requested until drained; chunking larger key
// lists is the helpers' responsibility, not the service's.
func (s *Store) BatchGet(ctx context.Context, keys []repository.Key, consistent bool) ([]repository.Item, error) {
	opCtx := repository.OperationContext{Table: s.tableName, ItemCount: len(keys)}

	if len(keys) == 0 {
		return nil, nil
	}
	if len(keys) > MaxBatchGetKeys {
		return nil, repository.NewDataAccessError("BatchGetItem", opCtx,
			fmt.Errorf("batch get accepts at most %d keys, got %d", MaxBatchGetKeys, len(keys)))
	}

	pending := make([]map[string]types.AttributeValue, 0, len(keys))
	for _, key := range keys {
		pending = append(pending, keyAttributeValues(key))
	}

	var items []repository.Item
	for len(pending) > 0 {
		input := &dynamodb.BatchGetItemInput{
			RequestItems: map[string]types.KeysAndAttributes{
				s.tableName: {Keys: pending, ConsistentRead: aws.Bool(consistent)},
			},
		}

		var out *dynamodb.BatchGetItemOutput
		err := s.executor.Do(ctx, "BatchGetItem", func() error {
			var err error
			out, err = s.client.BatchGetItem(ctx, input)
			return err
		})
		if err != nil {
			return nil, repository.NewDataAccessError("BatchGetItem", opCtx, err)
		}

		page, err := unmarshalItems(out.Responses[s.tableName])
		if err != nil {
			return nil, repository.NewDataAccessError("BatchGetItem", opCtx, err)
		}
		items = append(items, page...)

		pending = nil
		if unprocessed, ok := out.UnprocessedKeys[s.tableName]; ok {
			pending = unprocessed.Keys
		}
	}
	return items, nil
}

// BatchWrite issues up to MaxBatchWriteItems puts and deletes in one batch,
// draining unprocessed requests. No conditions apply; chunking is the
// helpers' responsibility.
func (s *Store) BatchWrite(ctx context.Context, puts []repository.Item, deletes []repository.Key) error {
	opCtx := repository.OperationContext{Table: s.tableName, ItemCount: len(puts) + len(deletes)}

	total := len(puts) + len(deletes)
	if total == 0 {
		return nil
	}
	if total > MaxBatchWriteItems {
		return repository.NewDataAccessError("BatchWriteItem", opCtx,
			fmt.Errorf("batch write accepts at most %d requests, got %d", MaxBatchWriteItems, total))
	}

	now := s.now()
	pending := make([]types.WriteRequest, 0, total)
	for i := range puts {
		puts[i].TouchTimestamps(now)
		av, err := marshalItem(&puts[i])
		if err != nil {
			return repository.NewDataAccessError("BatchWriteItem", opCtx, err)
		}
		pending = append(pending, types.WriteRequest{PutRequest: &types.PutRequest{Item: av}})
	}
	for _, key := range deletes {
		pending = append(pending, types.WriteRequest{DeleteRequest: &types.DeleteRequest{Key: keyAttributeValues(key)}})
	}

	for len(pending) > 0 {
		input := &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{s.tableName: pending},
		}

		var out *dynamodb.BatchWriteItemOutput
		err := s.executor.Do(ctx, "BatchWriteItem", func() error {
			var err error
			out, err = s.client.BatchWriteItem(ctx, input)
			return err
		})
		if err != nil {
			return repository.NewDataAccessError("BatchWriteItem", opCtx, err)
		}
		pending = out.UnprocessedItems[s.tableName]
	}
	return nil
}

// TransactWrite applies up to MaxTransactionItems operations atomically.
// Any single failed condition aborts the whole batch, surfaced as the
// terminal TRANSACTION_CANCELED kind. The client request token keeps a
// retried transaction idempotent from the store's point of view.
func (s *Store) TransactWrite(ctx context.Context, items []repository.TransactionItem) error {
	opCtx := repository.OperationContext{Table: s.tableName, ItemCount: len(items)}

	if len(items) == 0 {
		return nil
	}
	if len(items) > MaxTransactionItems {
		return repository.NewDataAccessError("TransactWriteItems", opCtx,
			fmt.Errorf("transaction accepts at most %d items, got %d", MaxTransactionItems, len(items)))
	}

	now := s.now()
	twItems := make([]types.TransactWriteItem, 0, len(items))
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return repository.NewDataAccessError("TransactWriteItems", opCtx, fmt.Errorf("item %d: %w", i, err))
		}
		twi, err := s.buildTransactWriteItem(item, now)
		if err != nil {
			return repository.NewDataAccessError("TransactWriteItems", opCtx, fmt.Errorf("item %d: %w", i, err))
		}
		twItems = append(twItems, twi)
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems:      twItems,
		ClientRequestToken: aws.String(uuid.NewString()),
	}

	err := s.executor.Do(ctx, "TransactWriteItems", func() error {
		_, err := s.client.TransactWriteItems(ctx, input)
		return err
	})
	if err != nil {
		return repository.NewDataAccessError("TransactWriteItems", opCtx, err)
	}
	return nil
}

// TransactGet reads up to MaxTransactGetItems keys as one snapshot. Missing
// keys yield no item; the result preserves the order of found items.
func (s *Store) TransactGet(ctx context.Context, keys []repository.Key) ([]repository.Item, error) {
	opCtx := repository.OperationContext{Table: s.tableName, ItemCount: len(keys)}

	if len(keys) == 0 {
		return nil, nil
	}
	if len(keys) > MaxTransactGetItems {
		return nil, repository.NewDataAccessError("TransactGetItems", opCtx,
			fmt.Errorf("transactional get accepts at most %d keys, got %d", MaxTransactGetItems, len(keys)))
	}

	tgItems := make([]types.TransactGetItem, 0, len(keys))
	for _, key := range keys {
		tgItems = append(tgItems, types.TransactGetItem{
			Get: &types.Get{
				TableName: aws.String(s.tableName),
				Key:       keyAttributeValues(key),
			},
		})
	}

	var out *dynamodb.TransactGetItemsOutput
	err := s.executor.Do(ctx, "TransactGetItems", func() error {
		var err error
		out, err = s.client.TransactGetItems(ctx, &dynamodb.TransactGetItemsInput{TransactItems: tgItems})
		return err
	})
	if err != nil {
		return nil, repository.NewDataAccessError("TransactGetItems", opCtx, err)
	}

	var items []repository.Item
	for _, resp := range out.Responses {
		if resp.Item == nil {
			continue
		}
		item, err := unmarshalItem(resp.Item)
		if err != nil {
			return nil, repository.NewDataAccessError("TransactGetItems", opCtx, err)
		}
		items = append(items, *item)
	}
	return items, nil
}

// buildQueryInput assembles the key condition, filter, and paging controls.
func (s *Store) buildQueryInput(spec repository.QuerySpec) (*dynamodb.QueryInput, error) {
	pkAttr, skAttr, err := repository.IndexKeyAttributes(spec.IndexName)
	if err != nil {
		return nil, err
	}

	names := map[string]string{"#pk": pkAttr}
	values := map[string]types.AttributeValue{
		":pk": &types.AttributeValueMemberS{Value: spec.PartitionKey},
	}
	keyCondition := "#pk = :pk"

	if spec.Sort != nil {
		names["#sk"] = skAttr
		clause, err := sortKeyClause(spec.Sort, values)
		if err != nil {
			return nil, err
		}
		keyCondition += " AND " + clause
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		KeyConditionExpression:    aws.String(keyCondition),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ExclusiveStartKey:         spec.ExclusiveStartKey,
		ScanIndexForward:          aws.Bool(!spec.Descending),
		ConsistentRead:            aws.Bool(spec.Consistent),
	}
	if spec.IndexName != "" {
		input.IndexName = aws.String(spec.IndexName)
		input.ConsistentRead = nil
	}
	if spec.Limit > 0 {
		input.Limit = aws.Int32(spec.Limit)
	}
	if filter := s.effectiveFilter(spec.Filter, spec.ExcludeExpired); !filter.Empty() {
		input.FilterExpression = aws.String(filter.Expression)
		for k, v := range filter.Names {
			input.ExpressionAttributeNames[k] = v
		}
		for k, v := range filter.Values {
			input.ExpressionAttributeValues[k] = v
		}
	}
	return input, nil
}

func sortKeyClause(sort *repository.SortCondition, values map[string]types.AttributeValue) (string, error) {
	switch sort.Operator {
	case repository.OpEq, repository.OpGt, repository.OpGte, repository.OpLt, repository.OpLte:
		if len(sort.Values) != 1 {
			return "", fmt.Errorf("sort operator %q requires one value", sort.Operator)
		}
		values[":sk"] = &types.AttributeValueMemberS{Value: sort.Values[0]}
		symbols := map[string]string{
			repository.OpEq: "=", repository.OpGt: ">", repository.OpGte: ">=",
			repository.OpLt: "<", repository.OpLte: "<=",
		}
		return fmt.Sprintf("#sk %s :sk", symbols[sort.Operator]), nil
	case repository.OpBeginsWith:
		if len(sort.Values) != 1 {
			return "", fmt.Errorf("begins_with requires one value")
		}
		values[":sk"] = &types.AttributeValueMemberS{Value: sort.Values[0]}
		return "begins_with(#sk, :sk)", nil
	case repository.OpBetween:
		if len(sort.Values) != 2 {
			return "", fmt.Errorf("between requires two values")
		}
		values[":ska"] = &types.AttributeValueMemberS{Value: sort.Values[0]}
		values[":skb"] = &types.AttributeValueMemberS{Value: sort.Values[1]}
		return "#sk BETWEEN :ska AND :skb", nil
	}
	return "", fmt.Errorf("unsupported sort operator %q", sort.Operator)
}

// effectiveFilter merges the caller's filter with the lazy-TTL exclusion.
func (s *Store) effectiveFilter(filter *repository.BuiltExpression, excludeExpired bool) *repository.BuiltExpression {
	if !excludeExpired {
		return filter
	}
	ttlFilter := &repository.BuiltExpression{
		Expression: "attribute_not_exists(#ttlAttr) OR #ttlAttr > :ttlNow",
		Names:      map[string]string{"#ttlAttr": repository.AttrTTL},
		Values: map[string]types.AttributeValue{
			":ttlNow": &types.AttributeValueMemberN{Value: strconv.FormatInt(s.now().Unix(), 10)},
		},
	}
	return repository.MergeExpressions(filter, ttlFilter)
}

// buildUpdateInput assembles the update expression, injecting the UpdatedAt
// refresh into both built and raw expressions.
func (s *Store) buildUpdateInput(key repository.Key, spec repository.UpdateSpec) (*dynamodb.UpdateItemInput, error) {
	input := &dynamodb.UpdateItemInput{
		TableName:    aws.String(s.tableName),
		Key:          keyAttributeValues(key),
		ReturnValues: types.ReturnValueAllNew,
	}

	names := make(map[string]string)
	values := make(map[string]types.AttributeValue)
	var exprStr string

	if spec.Expression != "" {
		exprStr = spec.Expression
		for k, v := range spec.ExpressionNames {
			names[k] = v
		}
		for k, v := range spec.ExpressionValues {
			values[k] = v
		}
	} else {
		if len(spec.Values) == 0 {
			return nil, fmt.Errorf("update requires at least one field or a raw expression")
		}
		built, err := repository.BuildUpdateExpression(spec.Values, &repository.UpdateOptions{SkipNull: spec.SkipNull})
		if err != nil {
			return nil, err
		}
		if built.Empty() {
			return nil, fmt.Errorf("update produced an empty expression")
		}
		exprStr = built.Expression
		names = built.Names
		values = built.Values
	}

	exprStr = withUpdatedAt(exprStr, names, values, s.now())
	input.UpdateExpression = aws.String(exprStr)
	input.ExpressionAttributeNames = names
	input.ExpressionAttributeValues = values

	if spec.Condition != "" {
		input.ConditionExpression = aws.String(spec.Condition)
		for k, v := range spec.ConditionNames {
			names[k] = v
		}
		for k, v := range spec.ConditionValues {
			values[k] = v
		}
	}
	return input, nil
}

// withUpdatedAt splices the UpdatedAt refresh into an update expression so
// every write path maintains the timestamp.
func withUpdatedAt(expr string, names map[string]string, values map[string]types.AttributeValue, now time.Time) string {
	names["#updatedAt"] = repository.AttrUpdatedAt
	values[":updatedAt"] = &types.AttributeValueMemberS{Value: now.UTC().Format(time.RFC3339)}
	if strings.Contains(expr, "SET ") {
		return strings.Replace(expr, "SET ", "SET #updatedAt = :updatedAt, ", 1)
	}
	return expr + " SET #updatedAt = :updatedAt"
}

// buildTransactWriteItem converts one tagged-union member to the wire shape.
func (s *Store) buildTransactWriteItem(item repository.TransactionItem, now time.Time) (types.TransactWriteItem, error) {
	var twi types.TransactWriteItem

	switch {
	case item.Put != nil:
		item.Put.Item.TouchTimestamps(now)
		av, err := marshalItem(item.Put.Item)
		if err != nil {
			return twi, err
		}
		put := &types.Put{TableName: aws.String(s.tableName), Item: av}
		if item.Put.Condition != "" {
			put.ConditionExpression = aws.String(item.Put.Condition)
			put.ExpressionAttributeNames = item.Put.ConditionNames
			put.ExpressionAttributeValues = item.Put.ConditionValues
		}
		twi.Put = put

	case item.Update != nil:
		input, err := s.buildUpdateInput(item.Update.Key, item.Update.Update)
		if err != nil {
			return twi, err
		}
		update := &types.Update{
			TableName:                 input.TableName,
			Key:                       input.Key,
			UpdateExpression:          input.UpdateExpression,
			ConditionExpression:       input.ConditionExpression,
			ExpressionAttributeNames:  input.ExpressionAttributeNames,
			ExpressionAttributeValues: input.ExpressionAttributeValues,
		}
		twi.Update = update

	case item.Delete != nil:
		del := &types.Delete{TableName: aws.String(s.tableName), Key: keyAttributeValues(item.Delete.Key)}
		if item.Delete.Condition != "" {
			del.ConditionExpression = aws.String(item.Delete.Condition)
			del.ExpressionAttributeNames = item.Delete.ConditionNames
			del.ExpressionAttributeValues = item.Delete.ConditionValues
		}
		twi.Delete = del

	case item.ConditionCheck != nil:
		check := &types.ConditionCheck{
			TableName:           aws.String(s.tableName),
			Key:                 keyAttributeValues(item.ConditionCheck.Key),
			ConditionExpression: aws.String(item.ConditionCheck.Condition),
		}
		check.ExpressionAttributeNames = item.ConditionCheck.ConditionNames
		check.ExpressionAttributeValues = item.ConditionCheck.ConditionValues
		twi.ConditionCheck = check
	}

	return twi, nil
}
