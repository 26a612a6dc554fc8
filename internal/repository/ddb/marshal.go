package ddb

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"talkboard-backend/internal/repository"
)

// marshalItem converts an Item to its stored representation, flattening the
// payload attributes next to the fixed fields.
func marshalItem(item *repository.Item) (map[string]types.AttributeValue, error) {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, fmt.Errorf("marshal item fields: %w", err)
	}
	for name, value := range item.Attributes {
		if repository.IsReservedAttribute(name) {
			return nil, fmt.Errorf("payload attribute %q collides with a managed field", name)
		}
		attr, err := attributevalue.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("marshal payload attribute %q: %w", name, err)
		}
		av[name] = attr
	}
	return av, nil
}

// unmarshalItem converts a stored representation back to an Item, collecting
// non-managed attributes into the payload map.
func unmarshalItem(av map[string]types.AttributeValue) (*repository.Item, error) {
	var item repository.Item
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return nil, fmt.Errorf("unmarshal item fields: %w", err)
	}
	for name, attr := range av {
		if repository.IsReservedAttribute(name) {
			continue
		}
		var value interface{}
		if err := attributevalue.Unmarshal(attr, &value); err != nil {
			return nil, fmt.Errorf("unmarshal payload attribute %q: %w", name, err)
		}
		if item.Attributes == nil {
			item.Attributes = make(map[string]interface{})
		}
		item.Attributes[name] = value
	}
	return &item, nil
}

func unmarshalItems(avs []map[string]types.AttributeValue) ([]repository.Item, error) {
	items := make([]repository.Item, 0, len(avs))
	for _, av := range avs {
		item, err := unmarshalItem(av)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

// keyAttributeValues converts a Key to the store's key map format.
func keyAttributeValues(key repository.Key) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		repository.AttrPK: &types.AttributeValueMemberS{Value: key.PK},
		repository.AttrSK: &types.AttributeValueMemberS{Value: key.SK},
	}
}
