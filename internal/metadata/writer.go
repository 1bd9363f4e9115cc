package metadata

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Writer writes record files into Dir, one record per file.
type Writer struct {
	Dir string
}

// Write stores each doc as <fqName>.hilt.yaml and returns the written paths.
func (w *Writer) Write(docs ...Doc) ([]string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", w.Dir, err)
	}

	var paths []string
	for _, doc := range docs {
		data, err := yaml.Marshal(doc)
		if err != nil {
			return paths, fmt.Errorf("marshal %s: %w", doc.FQName, err)
		}
		path := filepath.Join(w.Dir, FileName(doc))
		if err := os.WriteFile(path, data, 0644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// FileName is the record file name of doc.
func FileName(doc Doc) string {
	return doc.FQName.String() + FileSuffixes[0]
}

// Encode writes docs to out as a multi-document YAML stream.
func Encode(out io.Writer, docs ...Doc) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	for _, doc := range docs {
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode %s: %w", doc.FQName, err)
		}
	}
	return enc.Close()
}
