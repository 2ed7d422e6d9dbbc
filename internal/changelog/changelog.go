// Package changelog maintains the append-only audit trail of entity
// mutations. Entries are stored in a single JSON document
// ({version, lastUpdated, entries[]}) next to the entity directories.
//
// The changelog is a best-effort observability artifact, not a source of
// truth: writers treat append failures as non-fatal to the mutation that
// triggered them.
package changelog

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"
)

// EntityType identifies which kind of entity an entry describes.
type EntityType string

const (
	EntityEpic      EntityType = "epic"
	EntityFeature   EntityType = "feature"
	EntityMilestone EntityType = "milestone"
	EntityStory     EntityType = "story"
)

// Action is the mutation kind recorded by an entry.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Entry is one immutable audit record. Update entries carry the changed
// field and its old/new values; create and delete entries do not.
type Entry struct {
	ID         string     `json:"id"`
	Timestamp  string     `json:"timestamp"` // RFC 3339
	EntityType EntityType `json:"entityType"`
	EntityID   string     `json:"entityId"`
	Action     Action     `json:"action"`
	Field      string     `json:"field,omitempty"`
	OldValue   any        `json:"oldValue,omitempty"`
	NewValue   any        `json:"newValue,omitempty"`
	User       string     `json:"user,omitempty"`
}

// File is the on-disk changelog document.
type File struct {
	Version     string  `json:"version"`
	LastUpdated string  `json:"lastUpdated,omitempty"`
	Entries     []Entry `json:"entries"`
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewID generates a changelog entry id: CHG-<base36 millis>-<base36 random>.
func NewID() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	buf := make([]byte, 6)
	for i := range buf {
		buf[i] = base36[rand.Intn(len(base36))]
	}
	return fmt.Sprintf("CHG-%s-%s", ts, buf)
}

// NewEntry builds a stamped entry for the given mutation.
func NewEntry(entityType EntityType, entityID string, action Action) Entry {
	return Entry{
		ID:         NewID(),
		Timestamp:  time.Now().Format(time.RFC3339),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
	}
}
