package project

import (
	"fmt"
	"strconv"
	"strings"
)

// ID prefixes for each entity type.
const (
	PrefixEpic      = "EPIC"
	PrefixFeature   = "FEAT"
	PrefixStory     = "STORY"
	PrefixMilestone = "MILE"
)

// ParseIDNumber extracts the numeric suffix from an id like "FEAT-007".
func ParseIDNumber(id string) (int, error) {
	i := strings.LastIndex(id, "-")
	if i < 0 {
		return 0, fmt.Errorf("invalid id format: %s", id)
	}
	n, err := strconv.Atoi(id[i+1:])
	if err != nil {
		return 0, fmt.Errorf("invalid id format: %s", id)
	}
	return n, nil
}

// NextID returns the next collision-free id for the given prefix, derived
// from the set of existing ids. Ids with unparsable suffixes are ignored.
// With no existing ids the result is "<prefix>-001".
//
// NextID is pure: it does not reserve the id. The caller must claim it by
// writing the entity file before another writer can compute the same value;
// concurrent creators therefore need an external serialization point.
func NextID(prefix string, existing []string) string {
	max := 0
	for _, id := range existing {
		n, err := ParseIDNumber(id)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s-%03d", prefix, max+1)
}
