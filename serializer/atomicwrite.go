package serializer

import (
	"fmt"
	"os"
	"strings"
)

const tempSuffix = ".trigforge.tmp"

// WriteFileAtomic writes lines (joined with "\n") to path via a temp
// file in the same directory followed by os.Rename, so a reader never
// observes a partially written file. There is no lock: the core is
// single-threaded and synchronous, so no other writer can
// contend for path during the call.
func WriteFileAtomic(path string, lines []string) error {
	tmp := path + tempSuffix

	content := strings.Join(lines, "\n")
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing temp file for %q: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming temp file into %q: %w", path, err)
	}
	return nil
}
