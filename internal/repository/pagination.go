package repository

import (
	"encoding/base64"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// LastEvaluatedKey is the store-native resume position for a query or scan,
// covering the base table keys and both GSI projections. All key attributes
// are strings under this schema.
type LastEvaluatedKey struct {
	PK     string `json:"pk"`
	SK     string `json:"sk"`
	GSI1PK string `json:"gsi1pk,omitempty"`
	GSI1SK string `json:"gsi1sk,omitempty"`
	GSI2PK string `json:"gsi2pk,omitempty"`
	GSI2SK string `json:"gsi2sk,omitempty"`
}

// IsZero reports whether no resume position is set.
func (lek LastEvaluatedKey) IsZero() bool {
	return lek == LastEvaluatedKey{}
}

// ToAttributeValues converts the resume position to the store's exclusive
// start key format.
func (lek LastEvaluatedKey) ToAttributeValues() map[string]types.AttributeValue {
	if lek.IsZero() {
		return nil
	}
	key := make(map[string]types.AttributeValue)
	set := func(attr, value string) {
		if value != "" {
			key[attr] = &types.AttributeValueMemberS{Value: value}
		}
	}
	set(AttrPK, lek.PK)
	set(AttrSK, lek.SK)
	set(AttrGSI1PK, lek.GSI1PK)
	set(AttrGSI1SK, lek.GSI1SK)
	set(AttrGSI2PK, lek.GSI2PK)
	set(AttrGSI2SK, lek.GSI2SK)
	return key
}

// LastEvaluatedKeyFrom extracts the resume position from the store's last
// evaluated key map. Non-string attributes are ignored.
func LastEvaluatedKeyFrom(key map[string]types.AttributeValue) LastEvaluatedKey {
	get := func(attr string) string {
		if s, ok := key[attr].(*types.AttributeValueMemberS); ok {
			return s.Value
		}
		return ""
	}
	return LastEvaluatedKey{
		PK:     get(AttrPK),
		SK:     get(AttrSK),
		GSI1PK: get(AttrGSI1PK),
		GSI1SK: get(AttrGSI1SK),
		GSI2PK: get(AttrGSI2PK),
		GSI2SK: get(AttrGSI2SK),
	}
}

// EncodePageToken wraps a last evaluated key in an opaque continuation
// token: base64(json). An absent key yields the empty token, meaning no
// further page.
func EncodePageToken(lastKey map[string]types.AttributeValue) string {
	if len(lastKey) == 0 {
		return ""
	}
	lek := LastEvaluatedKeyFrom(lastKey)
	if lek.IsZero() {
		return ""
	}
	data, err := json.Marshal(lek)
	if err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(data)
}

// DecodePageToken unwraps a continuation token back into an exclusive start
// key. Absent, foreign, or corrupted tokens decode to nil — "start from the
// beginning" — rather than failing the caller.
func DecodePageToken(token string) map[string]types.AttributeValue {
	if token == "" {
		return nil
	}
	data, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil
	}
	var lek LastEvaluatedKey
	if err := json.Unmarshal(data, &lek); err != nil {
		return nil
	}
	return lek.ToAttributeValues()
}
