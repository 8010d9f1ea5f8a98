package dataset

import (
	"encoding/csv"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"wfguard/internal/model"
)

// Output file names inside the dataset directory.
const (
	summaryName  = "summary.json"
	overheadName = "overhead_per_session.csv"
)

func featuresName(label model.SplitLabel) string {
	return fmt.Sprintf("features_%s.dat", label)
}

func metadataName(label model.SplitLabel) string {
	return fmt.Sprintf("metadata_%s.csv", label)
}

// WriteResult persists one build under outputDir: a gob-encoded feature
// matrix and a row-aligned metadata CSV per split, the corpus-wide overhead
// table, and summary.json. Everything is staged in a temporary sibling
// directory and published by rename, so a crash mid-run never leaves a
// partially written dataset at outputDir.
func WriteResult(result *Result, outputDir string) error {
	result.Summary.OutputDir = outputDir

	parent := filepath.Dir(filepath.Clean(outputDir))
	if err := os.MkdirAll(parent, 0755); err != nil {
		return fmt.Errorf("failed to create output parent directory: %w", err)
	}
	stage, err := os.MkdirTemp(parent, ".wfguard-stage-")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(stage)

	for _, label := range model.Splits {
		split := result.Splits[label]
		if err := writeMatrix(filepath.Join(stage, featuresName(label)), split.Matrix); err != nil {
			return err
		}
		if err := writeMetadata(filepath.Join(stage, metadataName(label)), split.Meta); err != nil {
			return err
		}
	}
	if err := writeOverhead(filepath.Join(stage, overheadName), result.Rows); err != nil {
		return err
	}
	if err := writeSummary(filepath.Join(stage, summaryName), &result.Summary); err != nil {
		return err
	}

	return publish(stage, outputDir)
}

// publish moves the staged files to their final location. When the output
// directory does not exist yet this is a single atomic rename; otherwise
// files are swapped in one by one, each rename itself atomic.
func publish(stage, outputDir string) error {
	if err := os.Rename(stage, outputDir); err == nil {
		return nil
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	entries, err := os.ReadDir(stage)
	if err != nil {
		return fmt.Errorf("failed to list staging directory: %w", err)
	}
	for _, entry := range entries {
		from := filepath.Join(stage, entry.Name())
		to := filepath.Join(outputDir, entry.Name())
		if err := os.Rename(from, to); err != nil {
			return fmt.Errorf("failed to publish '%s': %w", entry.Name(), err)
		}
	}
	return nil
}

func writeMatrix(path string, matrix *Matrix) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create matrix file '%s': %w", path, err)
	}
	defer file.Close()

	encoder := gob.NewEncoder(file)
	if err := encoder.Encode(matrix); err != nil {
		return fmt.Errorf("failed to encode matrix to gob for '%s': %w", path, err)
	}
	return nil
}

// ReadMatrix loads a gob-encoded feature matrix written by WriteResult.
func ReadMatrix(path string) (*Matrix, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open matrix file '%s': %w", path, err)
	}
	defer file.Close()

	var matrix Matrix
	if err := gob.NewDecoder(file).Decode(&matrix); err != nil {
		return nil, fmt.Errorf("failed to decode matrix file '%s': %w", path, err)
	}
	return &matrix, nil
}

var metadataHeader = []string{"site_id", "visit_id", "defense_on", "packet_count", "total_bytes"}

func writeMetadata(path string, metas []model.Metadata) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create metadata file '%s': %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(metadataHeader); err != nil {
		return err
	}
	for _, m := range metas {
		if err := writer.Write(metadataRecord(m)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// writeOverhead writes the corpus-wide overhead table: one row per retained
// session regardless of split, quantifying a defense's packet and byte cost.
func writeOverhead(path string, rows []model.SessionRow) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create overhead file '%s': %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := append(append([]string{}, metadataHeader...), "split")
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		record := append(metadataRecord(r.Meta), string(r.Split))
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func metadataRecord(m model.Metadata) []string {
	return []string{
		m.SiteID,
		m.VisitID,
		strconv.FormatBool(m.DefenseOn),
		strconv.Itoa(m.PacketCount),
		strconv.FormatInt(m.TotalBytes, 10),
	}
}

func writeSummary(path string, summary *model.BuildSummary) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(summary); err != nil {
		return fmt.Errorf("failed to encode summary to json: %w", err)
	}
	return nil
}
