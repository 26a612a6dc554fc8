package repository

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// SortCondition narrows a query within its partition. Operator is one of the
// comparison operators, OpBeginsWith, or OpBetween (two values).
type SortCondition struct {
	Operator string
	Values   []string
}

// QuerySpec describes one query page. The partition key value is mandatory;
// everything else is optional.
type QuerySpec struct {
	PartitionKey      string
	Sort              *SortCondition
	IndexName         string // "" for the base table, IndexGSI1 or IndexGSI2
	Filter            *BuiltExpression
	Limit             int32
	ExclusiveStartKey map[string]types.AttributeValue
	Descending        bool
	Consistent        bool

	// ExcludeExpired filters out items whose TTL has passed but which the
	// store has not swept yet.
	ExcludeExpired bool
}

// Validate checks the spec's invariants.
func (q QuerySpec) Validate() error {
	if q.PartitionKey == "" {
		return fmt.Errorf("query requires a partition key value")
	}
	if _, _, err := IndexKeyAttributes(q.IndexName); err != nil {
		return err
	}
	if q.Consistent && q.IndexName != "" {
		return fmt.Errorf("consistent reads are not supported on index %q", q.IndexName)
	}
	return nil
}

// ScanSpec describes one scan page. Segment/TotalSegments enable
// caller-driven parallel fan-out.
type ScanSpec struct {
	IndexName         string
	Filter            *BuiltExpression
	Limit             int32
	ExclusiveStartKey map[string]types.AttributeValue
	Segment           *int32
	TotalSegments     *int32
	ExcludeExpired    bool
}

// UpdateSpec describes a single-item update: a field map where nil removes
// the attribute, optionally gated by a condition expression. Expression, when
// set, overrides the field map with a raw update expression; the helpers use
// this for the store's native ADD / list_append / DELETE operators.
type UpdateSpec struct {
	Values   map[string]interface{}
	SkipNull bool

	Condition       string
	ConditionValues map[string]types.AttributeValue
	ConditionNames  map[string]string

	Expression       string
	ExpressionValues map[string]types.AttributeValue
	ExpressionNames  map[string]string
}

// TransactionItem is the tagged union of operations allowed in a
// transactional write batch. Exactly one member must be set.
type TransactionItem struct {
	Put            *TransactPut
	Update         *TransactUpdate
	Delete         *TransactDelete
	ConditionCheck *TransactConditionCheck
}

// TransactPut inserts or replaces an item, optionally gated by a condition.
type TransactPut struct {
	Item            *Item
	Condition       string
	ConditionValues map[string]types.AttributeValue
	ConditionNames  map[string]string
}

// TransactUpdate applies an UpdateSpec to one key.
type TransactUpdate struct {
	Key    Key
	Update UpdateSpec
}

// TransactDelete removes one key, optionally gated by a condition.
type TransactDelete struct {
	Key             Key
	Condition       string
	ConditionValues map[string]types.AttributeValue
	ConditionNames  map[string]string
}

// TransactConditionCheck asserts a predicate over one key without writing it.
type TransactConditionCheck struct {
	Key             Key
	Condition       string
	ConditionValues map[string]types.AttributeValue
	ConditionNames  map[string]string
}

// Validate ensures exactly one member of the union is set.
func (ti TransactionItem) Validate() error {
	n := 0
	if ti.Put != nil {
		n++
	}
	if ti.Update != nil {
		n++
	}
	if ti.Delete != nil {
		n++
	}
	if ti.ConditionCheck != nil {
		n++
	}
	if n != 1 {
		return fmt.Errorf("transaction item must set exactly one operation, got %d", n)
	}
	return nil
}

// IndexKeyAttributes resolves an index name to its key attribute names.
func IndexKeyAttributes(indexName string) (pkAttr, skAttr string, err error) {
	switch indexName {
	case "":
		return AttrPK, AttrSK, nil
	case IndexGSI1:
		return AttrGSI1PK, AttrGSI1SK, nil
	case IndexGSI2:
		return AttrGSI2PK, AttrGSI2SK, nil
	}
	return "", "", fmt.Errorf("unknown index %q", indexName)
}
