package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/reversefold/artifactory-disk-usage/types"
)

// Output file names, fixed by contract with the downstream visualizer.
const (
	FlatFile   = "directory_sizes_flat.json"
	TreeFile   = "directory_sizes_tree.json"
	D3TreeFile = "directory_sizes_d3tree.json"
)

// WriteAll renders all three documents into dir, pretty-printed.
// Callers invoke this only after a fully terminated crawl; there is no
// partial or incremental output.
func WriteAll(dir string, sizes types.SizeMap) error {
	docs := []struct {
		name string
		v    any
	}{
		{FlatFile, Flat(sizes)},
		{TreeFile, Nested(sizes)},
		{D3TreeFile, D3(sizes)},
	}
	for _, doc := range docs {
		if err := writeJSON(filepath.Join(dir, doc.name), doc.v); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
