package modpack

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// RequiredEntries must all exist at the root of a modpack installation.
var RequiredEntries = []string{"ModOrganizer.exe", "profiles", "launcher"}

// InvalidDirectoryTitle is shown above a ValidationError.
const InvalidDirectoryTitle = "Invalid modpack directory selected"

// ValidationError lists the required entries missing from a directory.
type ValidationError struct {
	Dir     string
	Missing []string
}

func (e *ValidationError) Error() string {
	quoted := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		quoted[i] = strconv.Quote(m)
	}
	return "Please ensure this is a valid modpack installation directory. " +
		"Remember, this is NOT the Skyrim directory, it is the mod's installation directory. " +
		"Missing files/directories: " + strings.Join(quoted, ",")
}

// Validate checks that dir is a modpack installation.
func Validate(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("modpack directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("modpack directory %s: not a directory", dir)
	}

	var missing []string
	for _, entry := range RequiredEntries {
		if _, err := os.Stat(filepath.Join(dir, entry)); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				missing = append(missing, entry)
				continue
			}
			return fmt.Errorf("stat %s: %w", entry, err)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Dir: dir, Missing: missing}
	}
	return nil
}
