// Package repository defines the core types and building blocks for the
// single-table data-access layer: items and keys, the error taxonomy,
// retry execution, expression building, and pagination tokens.
package repository

import "time"

// Attribute names used by the single-table schema.
const (
	AttrPK         = "PK"
	AttrSK         = "SK"
	AttrGSI1PK     = "GSI1PK"
	AttrGSI1SK     = "GSI1SK"
	AttrGSI2PK     = "GSI2PK"
	AttrGSI2SK     = "GSI2SK"
	AttrEntityType = "EntityType"
	AttrCreatedAt  = "CreatedAt"
	AttrUpdatedAt  = "UpdatedAt"
	AttrTTL        = "ttl"
)

// Secondary index names. The empty string addresses the base table.
const (
	IndexGSI1 = "GSI1"
	IndexGSI2 = "GSI2"
)

// Key identifies exactly one item in the table.
type Key struct {
	PK string `dynamodbav:"PK" json:"pk"`
	SK string `dynamodbav:"SK" json:"sk"`
}

// IsZero reports whether the key is missing either component.
func (k Key) IsZero() bool {
	return k.PK == "" || k.SK == ""
}

// Item is one addressable record in the store. The fixed fields cover the
// table keys, the denormalized GSI projections, the entity discriminator and
// the timestamps managed by the access layer. Everything else lives in
// Attributes and is flattened into the stored item.
type Item struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	GSI1PK     string `dynamodbav:"GSI1PK,omitempty"`
	GSI1SK     string `dynamodbav:"GSI1SK,omitempty"`
	GSI2PK     string `dynamodbav:"GSI2PK,omitempty"`
	GSI2SK     string `dynamodbav:"GSI2SK,omitempty"`
	EntityType string `dynamodbav:"EntityType,omitempty"`
	CreatedAt  string `dynamodbav:"CreatedAt,omitempty"`
	UpdatedAt  string `dynamodbav:"UpdatedAt,omitempty"`

	// TTL is the epoch second after which the store may garbage-collect
	// the item. Zero means the item never expires.
	TTL int64 `dynamodbav:"ttl,omitempty"`

	// Attributes holds the entity payload. Keys must not collide with the
	// fixed attribute names above.
	Attributes map[string]interface{} `dynamodbav:"-"`
}

// Key returns the item's primary key.
func (i *Item) Key() Key {
	return Key{PK: i.PK, SK: i.SK}
}

// Expired reports whether the item carries a TTL that has already passed.
// The store sweeps expired items lazily, so reads may still surface them.
func (i *Item) Expired(now time.Time) bool {
	return i.TTL > 0 && i.TTL <= now.Unix()
}

// TouchTimestamps refreshes UpdatedAt and backfills CreatedAt. Called by the
// access layer on every write.
func (i *Item) TouchTimestamps(now time.Time) {
	ts := now.UTC().Format(time.RFC3339)
	if i.CreatedAt == "" {
		i.CreatedAt = ts
	}
	i.UpdatedAt = ts
}

// reservedAttributes are the fixed fields owned by the access layer; payload
// attributes may not use these names.
var reservedAttributes = map[string]bool{
	AttrPK:         true,
	AttrSK:         true,
	AttrGSI1PK:     true,
	AttrGSI1SK:     true,
	AttrGSI2PK:     true,
	AttrGSI2SK:     true,
	AttrEntityType: true,
	AttrCreatedAt:  true,
	AttrUpdatedAt:  true,
	AttrTTL:        true,
}

// IsReservedAttribute reports whether name is managed by the access layer.
func IsReservedAttribute(name string) bool {
	return reservedAttributes[name]
}
