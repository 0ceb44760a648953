package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Cache wraps a GORM/SQLite connection holding generated-text
// memoization rows. The cache is touched only from cmd/trigforge's
// single goroutine, so no lock is needed; expiry doesn't apply either,
// since an entry is valid for as long as its key (an input-content
// digest) matches — there is nothing to age out.
type Cache struct {
	db *gorm.DB
}

// Connect opens (creating if necessary) the SQLite database at dsn and
// migrates the Entry table.
func Connect(dsn string) (*Cache, error) {
	if dir := filepath.Dir(dsn); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("opening codegen cache %q: %w", dsn, err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrating codegen cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// Inputs names what a library's cache key is computed from (see key): a
// SHA-256 digest over the library tag, the digests of the Triggers,
// TriggerStrings and DocumentInfo file contents, and the dependency list,
// in that order. A file whose path is empty is hashed as the marker
// "absent", so a library with no DocumentInfo doesn't collide with one
// whose DocumentInfo happens to be empty.
type Inputs struct {
	LibraryTag      string
	TriggersFile    string
	TriggerStrings  string
	DocumentInfo    string
	Dependencies    []string
}

func digestFile(path string) string {
	if path == "" {
		return "absent"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "unreadable:" + err.Error()
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (in Inputs) key() (string, map[string]string) {
	digests := map[string]string{
		"triggers":        digestFile(in.TriggersFile),
		"trigger_strings": digestFile(in.TriggerStrings),
		"document_info":   digestFile(in.DocumentInfo),
	}
	h := sha256.New()
	h.Write([]byte(in.LibraryTag))
	h.Write([]byte(digests["triggers"]))
	h.Write([]byte(digests["trigger_strings"]))
	h.Write([]byte(digests["document_info"]))
	for _, dep := range in.Dependencies {
		h.Write([]byte(dep))
	}
	return hex.EncodeToString(h.Sum(nil)), digests
}

// Get returns the cached generated text for in, if a row with a matching
// key exists.
func (c *Cache) Get(in Inputs) (string, bool, error) {
	key, _ := in.key()
	var entry Entry
	err := c.db.Where("key = ?", key).First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", false, nil
		}
		return "", false, fmt.Errorf("looking up codegen cache entry: %w", err)
	}
	return entry.GeneratedText, true, nil
}

// Put stores generatedText under in's key, replacing any prior entry for
// the same library tag.
func (c *Cache) Put(in Inputs, generatedText string) error {
	key, digests := in.key()

	depsJSON, err := json.Marshal(in.Dependencies)
	if err != nil {
		return fmt.Errorf("marshaling cache dependencies: %w", err)
	}
	digestsJSON, err := json.Marshal(digests)
	if err != nil {
		return fmt.Errorf("marshaling cache digests: %w", err)
	}

	entry := Entry{
		ID:            uuid.NewString(),
		Key:           key,
		LibraryTag:    in.LibraryTag,
		Dependencies:  datatypes.JSON(depsJSON),
		InputDigests:  datatypes.JSON(digestsJSON),
		GeneratedText: generatedText,
	}

	if err := c.db.Where("library_tag = ? AND key <> ?", in.LibraryTag, key).Delete(&Entry{}).Error; err != nil {
		return fmt.Errorf("dropping stale codegen cache entries: %w", err)
	}

	return c.db.Where("key = ?", key).
		Assign(entry).
		FirstOrCreate(&Entry{Key: key}).Error
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
