// Package cache memoizes generated library text: a CLI invoked
// repeatedly during iterative authoring can skip re-generating
// libraries whose inputs haven't changed. A cache miss or a disabled
// cache must produce byte-identical output to a cache hit; the cache
// never substitutes for load-bearing computation.
package cache

import (
	"time"

	"gorm.io/datatypes"
)

// Entry is one cached generation result for a library, keyed by a digest
// of its Triggers file, TriggerStrings file, and dependency list
// content: a digest-keyed row carrying the generated artifact plus
// enough metadata to explain a cache hit or miss without re-deriving it.
type Entry struct {
	ID  string `gorm:"primaryKey;type:varchar(36)"`
	Key string `gorm:"type:varchar(64);uniqueIndex;not null"`

	LibraryTag string `gorm:"type:varchar(16);index"`

	// Dependencies is the ordered dependency list the entry was
	// generated against, stored inline rather than in a second table.
	Dependencies datatypes.JSON `gorm:"type:jsonb"`

	// InputDigests breaks the cache key down by input file (triggers,
	// trigger_strings, document_info) so a cache-invalidation report can say
	// which file changed.
	InputDigests datatypes.JSON `gorm:"type:jsonb"`

	GeneratedText string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Entry) TableName() string { return "codegen_cache_entries" }
