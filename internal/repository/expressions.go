package repository

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Filter operators accepted by BuildFilterExpression and sort-key conditions.
const (
	OpEq         = "eq"
	OpNe         = "ne"
	OpGt         = "gt"
	OpGte        = "gte"
	OpLt         = "lt"
	OpLte        = "lte"
	OpContains   = "contains"
	OpBeginsWith = "beginsWith"
	OpBetween    = "between"
)

var comparatorSymbols = map[string]string{
	OpEq:  "=",
	OpNe:  "<>",
	OpGt:  ">",
	OpGte: ">=",
	OpLt:  "<",
	OpLte: "<=",
}

// Cond pairs an operator with its operand(s) for a single filter field.
// Value carries the operand for unary operators; Values carries both
// bounds for between.
type Cond struct {
	Op     string
	Value  interface{}
	Values []interface{}
}

// BuiltExpression is a composed expression string plus its placeholder maps.
// Attribute names never appear bare in the expression body; every field goes
// through the name-placeholder indirection so reserved words are safe.
type BuiltExpression struct {
	Expression string
	Names      map[string]string
	Values     map[string]types.AttributeValue
}

// Empty reports whether the expression should be omitted from the request.
func (b *BuiltExpression) Empty() bool {
	return b == nil || b.Expression == ""
}

// UpdateOptions tunes BuildUpdateExpression.
type UpdateOptions struct {
	// SkipNull drops nil values instead of emitting REMOVE clauses.
	SkipNull bool
	// Namespace prefixes placeholders so several built expressions can be
	// merged into one request without collisions.
	Namespace string
}

// BuildUpdateExpression turns a field→value map into an update expression.
// Non-nil values become SET clauses, nil values become REMOVE clauses
// (unless SkipNull). Each field gets exactly one indexed placeholder pair;
// field order is deterministic.
func BuildUpdateExpression(updates map[string]interface{}, opts *UpdateOptions) (*BuiltExpression, error) {
	if opts == nil {
		opts = &UpdateOptions{}
	}
	prefix := opts.Namespace
	if prefix == "" {
		prefix = "u"
	}

	fields := sortedKeys(updates)
	built := &BuiltExpression{
		Names:  make(map[string]string),
		Values: make(map[string]types.AttributeValue),
	}

	var setParts, removeParts []string
	for i, field := range fields {
		value := updates[field]
		namePH := fmt.Sprintf("#%s%d", prefix, i)

		if value == nil {
			if opts.SkipNull {
				continue
			}
			built.Names[namePH] = field
			removeParts = append(removeParts, namePH)
			continue
		}

		av, err := attributevalue.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("marshal update value for %q: %w", field, err)
		}
		valuePH := fmt.Sprintf(":%s%d", prefix, i)
		built.Names[namePH] = field
		built.Values[valuePH] = av
		setParts = append(setParts, fmt.Sprintf("%s = %s", namePH, valuePH))
	}

	var clauses []string
	if len(setParts) > 0 {
		clauses = append(clauses, "SET "+strings.Join(setParts, ", "))
	}
	if len(removeParts) > 0 {
		clauses = append(clauses, "REMOVE "+strings.Join(removeParts, ", "))
	}
	built.Expression = strings.Join(clauses, " ")
	return built, nil
}

// FilterOptions tunes BuildFilterExpression.
type FilterOptions struct {
	// Join is the boolean operator between field conditions: "AND" (default)
	// or "OR".
	Join string
	// Namespace prefixes placeholders, as in UpdateOptions.
	Namespace string
}

// BuildFilterExpression turns a field→condition map into a filter
// expression. Scalars mean equality, slices mean IN membership, and Cond
// selects from the operator vocabulary. Empty input yields an empty
// expression; the caller omits the clause entirely.
func BuildFilterExpression(filters map[string]interface{}, opts *FilterOptions) (*BuiltExpression, error) {
	if opts == nil {
		opts = &FilterOptions{}
	}
	join := strings.ToUpper(opts.Join)
	if join == "" {
		join = "AND"
	}
	if join != "AND" && join != "OR" {
		return nil, fmt.Errorf("invalid join operator %q", opts.Join)
	}
	prefix := opts.Namespace
	if prefix == "" {
		prefix = "f"
	}

	fields := sortedKeys(filters)
	built := &BuiltExpression{
		Names:  make(map[string]string),
		Values: make(map[string]types.AttributeValue),
	}

	var parts []string
	for i, field := range fields {
		namePH := fmt.Sprintf("#%s%d", prefix, i)
		valuePH := fmt.Sprintf(":%s%d", prefix, i)
		built.Names[namePH] = field

		part, err := buildFieldCondition(built, namePH, valuePH, filters[field])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field, err)
		}
		parts = append(parts, part)
	}

	built.Expression = strings.Join(parts, " "+join+" ")
	return built, nil
}

func buildFieldCondition(built *BuiltExpression, namePH, valuePH string, value interface{}) (string, error) {
	if cond, ok := value.(Cond); ok {
		return buildOperatorCondition(built, namePH, valuePH, cond)
	}

	rv := reflect.ValueOf(value)
	if value != nil && rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8 {
		return buildMembershipCondition(built, namePH, valuePH, rv)
	}

	av, err := attributevalue.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("marshal filter value: %w", err)
	}
	built.Values[valuePH] = av
	return fmt.Sprintf("%s = %s", namePH, valuePH), nil
}

func buildOperatorCondition(built *BuiltExpression, namePH, valuePH string, cond Cond) (string, error) {
	if symbol, ok := comparatorSymbols[cond.Op]; ok {
		av, err := attributevalue.Marshal(cond.Value)
		if err != nil {
			return "", fmt.Errorf("marshal %s operand: %w", cond.Op, err)
		}
		built.Values[valuePH] = av
		return fmt.Sprintf("%s %s %s", namePH, symbol, valuePH), nil
	}

	switch cond.Op {
	case OpContains, OpBeginsWith:
		av, err := attributevalue.Marshal(cond.Value)
		if err != nil {
			return "", fmt.Errorf("marshal %s operand: %w", cond.Op, err)
		}
		built.Values[valuePH] = av
		fn := "contains"
		if cond.Op == OpBeginsWith {
			fn = "begins_with"
		}
		return fmt.Sprintf("%s(%s, %s)", fn, namePH, valuePH), nil

	case OpBetween:
		if len(cond.Values) != 2 {
			return "", fmt.Errorf("between requires exactly two operands, got %d", len(cond.Values))
		}
		lo, err := attributevalue.Marshal(cond.Values[0])
		if err != nil {
			return "", fmt.Errorf("marshal between lower bound: %w", err)
		}
		hi, err := attributevalue.Marshal(cond.Values[1])
		if err != nil {
			return "", fmt.Errorf("marshal between upper bound: %w", err)
		}
		loPH, hiPH := valuePH+"a", valuePH+"b"
		built.Values[loPH] = lo
		built.Values[hiPH] = hi
		return fmt.Sprintf("%s BETWEEN %s AND %s", namePH, loPH, hiPH), nil
	}

	return "", fmt.Errorf("unsupported operator %q", cond.Op)
}

func buildMembershipCondition(built *BuiltExpression, namePH, valuePH string, rv reflect.Value) (string, error) {
	if rv.Len() == 0 {
		return "", fmt.Errorf("IN membership requires at least one value")
	}
	placeholders := make([]string, 0, rv.Len())
	for j := 0; j < rv.Len(); j++ {
		av, err := attributevalue.Marshal(rv.Index(j).Interface())
		if err != nil {
			return "", fmt.Errorf("marshal IN member %d: %w", j, err)
		}
		memberPH := fmt.Sprintf("%s_%d", valuePH, j)
		built.Values[memberPH] = av
		placeholders = append(placeholders, memberPH)
	}
	return fmt.Sprintf("%s IN (%s)", namePH, strings.Join(placeholders, ", ")), nil
}

// MergeExpressions combines filter expressions with AND, merging their
// placeholder maps. Empty parts are skipped; merging nothing returns nil.
func MergeExpressions(parts ...*BuiltExpression) *BuiltExpression {
	merged := &BuiltExpression{
		Names:  make(map[string]string),
		Values: make(map[string]types.AttributeValue),
	}
	var exprs []string
	for _, part := range parts {
		if part.Empty() {
			continue
		}
		exprs = append(exprs, "("+part.Expression+")")
		for k, v := range part.Names {
			merged.Names[k] = v
		}
		for k, v := range part.Values {
			merged.Values[k] = v
		}
	}
	if len(exprs) == 0 {
		return nil
	}
	merged.Expression = strings.Join(exprs, " AND ")
	return merged
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
