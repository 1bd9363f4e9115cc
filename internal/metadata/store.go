package metadata

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileSuffixes are the extensions of record files.
var FileSuffixes = []string{".hilt.yaml", ".hilt.yml"}

// IsRecordFile reports whether name carries a record file extension.
func IsRecordFile(name string) bool {
	for _, suffix := range FileSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// Load reads every record file below dir. skip, when non-nil, is given
// slash separated paths relative to dir; returning true skips the file or
// the whole directory. All decoding problems are reported together.
func Load(dir string, skip func(rel string, isDir bool) bool) (*Set, error) {
	set := &Set{}
	var errs []error

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return relErr
		}
		if rel != "." && skip != nil && skip(filepath.ToSlash(rel), d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !IsRecordFile(d.Name()) {
			return nil
		}
		if err := loadFile(set, path); err != nil {
			errs = append(errs, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return set, nil
}

func loadFile(set *Set, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(set, f, path)
}

// Decode adds every document read from r to set. name is used in errors.
func Decode(set *Set, r io.Reader, name string) error {
	dec := yaml.NewDecoder(r)
	var errs []error
	for i := 1; ; i++ {
		var doc Doc
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// The decoder cannot resume after a syntax error.
			errs = append(errs, fmt.Errorf("%s: document %d: %w", name, i, err))
			break
		}
		if doc.Kind == "" && doc.FQName.IsZero() {
			continue // empty document
		}
		if err := set.Add(doc); err != nil {
			errs = append(errs, fmt.Errorf("%s: document %d: %w", name, i, err))
		}
	}
	return errors.Join(errs...)
}
