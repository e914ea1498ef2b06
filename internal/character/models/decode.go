package models

import (
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The collection is schema-less and the seed file is hand edited, so one
// document with a mistyped attribute must not make every listing fail.
// Values that fit their typed field (after coercion) are kept; anything else
// is dropped from the typed view. Unknown attributes still land in Extra.

// fieldRule returns the value to decode and whether to keep it.
type fieldRule func(v any) (any, bool)

var characterRules = map[string]fieldRule{
	"_id":             objectID,
	"name":            stringOrNull,
	"species":         stringOrNull,
	"gender":          stringOrNull,
	"house":           stringOrNull,
	"image":           stringOrNull,
	"yearOfBirth":     year,
	"alive":           boolOrNull,
	"hogwartsStudent": boolOrNull,
	"wand":            documentOrNull,
}

var wandRules = map[string]fieldRule{
	"wood": stringOrNull,
	"core": stringOrNull,
}

// UnmarshalBSON decodes a stored or seeded character leniently.
func (c *Character) UnmarshalBSON(data []byte) error {
	doc, err := sanitize(data, characterRules)
	if err != nil {
		return err
	}
	type plain Character
	return bson.Unmarshal(doc, (*plain)(c))
}

// UnmarshalBSON decodes a wand leniently.
func (w *Wand) UnmarshalBSON(data []byte) error {
	doc, err := sanitize(data, wandRules)
	if err != nil {
		return err
	}
	type plain Wand
	return bson.Unmarshal(doc, (*plain)(w))
}

func sanitize(data []byte, rules map[string]fieldRule) ([]byte, error) {
	var doc bson.D
	if err := bson.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	kept := doc[:0]
	for _, e := range doc {
		if rule, ok := rules[e.Key]; ok {
			v, keep := rule(e.Value)
			if !keep {
				continue
			}
			e.Value = v
		}
		kept = append(kept, e)
	}
	return bson.Marshal(kept)
}

// objectID accepts an ObjectID or its 24 character hex form. Any other id is
// dropped and the store assigns a fresh one on insert.
func objectID(v any) (any, bool) {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id, true
	case string:
		oid, err := primitive.ObjectIDFromHex(id)
		return oid, err == nil
	}
	return nil, false
}

// year coerces integral numbers and numeric strings. Null, fractions and
// free text such as "c. 1450s" leave the year absent.
func year(v any) (any, bool) {
	switch y := v.(type) {
	case int32:
		return int64(y), true
	case int64:
		return y, true
	case float64:
		if y == math.Trunc(y) && math.Abs(y) <= math.MaxInt32 {
			return int64(y), true
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(y), 10, 32); err == nil {
			return n, true
		}
	}
	return nil, false
}

func stringOrNull(v any) (any, bool) {
	switch v.(type) {
	case string, nil:
		return v, true
	}
	return nil, false
}

func boolOrNull(v any) (any, bool) {
	switch v.(type) {
	case bool, nil:
		return v, true
	}
	return nil, false
}

func documentOrNull(v any) (any, bool) {
	switch v.(type) {
	case bson.D, nil:
		return v, true
	}
	return nil, false
}
