package pipeline

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/seqrec-group/ingest-cli/internal/table"
)

// Manifest summarizes one pipeline run, written next to the canonical
// tables under {dataset_dir}/proc.
type Manifest struct {
	RunID          string    `yaml:"run_id"`
	Dataset        string    `yaml:"dataset"`
	Family         string    `yaml:"family"`
	Interactions   int       `yaml:"interactions"`
	MetadataRows   int       `yaml:"metadata_rows,omitempty"`
	KCore          int       `yaml:"k_core"`
	SampleUserSize int       `yaml:"sample_user_size,omitempty"`
	Files          []string  `yaml:"files"`
	StartedAt      time.Time `yaml:"started_at"`
	FinishedAt     time.Time `yaml:"finished_at"`
}

// WriteCSV writes a table as headed CSV. Output is rewritten whole each
// run, so unchanged input yields byte-identical output.
func WriteCSV(t *table.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "pipeline: create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Schema().Names()); err != nil {
		return eris.Wrap(err, "pipeline: write header")
	}
	rec := make([]string, len(t.Schema()))
	for r := 0; r < t.Len(); r++ {
		row := t.Row(r)
		for i, v := range row {
			rec[i] = table.CellString(v)
		}
		if err := w.Write(rec); err != nil {
			return eris.Wrap(err, "pipeline: write row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "pipeline: flush")
	}
	return nil
}

// WriteManifest writes the run manifest as YAML.
func WriteManifest(m *Manifest, path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return eris.Wrap(err, "pipeline: marshal manifest")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "pipeline: write %s", path)
	}
	return nil
}

// procDir ensures and returns the proc output directory for a dataset.
func procDir(datasetDir string) (string, error) {
	dir := filepath.Join(datasetDir, "proc")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrapf(err, "pipeline: mkdir %s", dir)
	}
	return dir, nil
}
