package models

import (
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// decodeLabel reads a BSON string holding an enum label. Documents written by
// the first version of the storefront used Portuguese labels, so every enum
// accepts both spellings through its alias table.
func decodeLabel(t bsontype.Type, data []byte) (string, error) {
	switch t {
	case bsontype.Null, bsontype.Undefined:
		return "", nil
	case bsontype.String:
		var value string
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return "", err
		}
		return value, nil
	default:
		return "", fmt.Errorf("cannot decode %s into enum label", t)
	}
}

func normalizeLabel(raw string, aliases map[string]string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	canonical, ok := aliases[key]
	return canonical, ok
}

func isBlank(text []byte) bool {
	return strings.TrimSpace(string(text)) == ""
}

// labelsFor lists every stored spelling of canonical, canonical first.
func labelsFor(canonical string, aliases map[string]string) []string {
	labels := []string{canonical}
	for alias, target := range aliases {
		if target == canonical && alias != canonical {
			labels = append(labels, alias)
		}
	}
	sort.Strings(labels[1:])
	return labels
}
