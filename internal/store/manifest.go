package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"wfguard/internal/model"
)

// ManifestName is the file name of the corpus manifest at a storage root.
const ManifestName = "manifest.csv"

var manifestHeader = []string{
	"site_id", "visit_id", "defense_on",
	"pcap_path", "parsed_path", "packet_count", "total_bytes",
}

// WriteManifest writes the manifest rows as CSV, replacing any existing
// manifest at path.
func WriteManifest(path string, rows []model.ManifestRow) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create manifest '%s': %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(manifestHeader); err != nil {
		return fmt.Errorf("failed to write manifest header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.SiteID,
			r.VisitID,
			strconv.FormatBool(r.DefenseOn),
			r.PCAPPath,
			r.ParsedPath,
			strconv.Itoa(r.PacketCount),
			strconv.FormatInt(r.TotalBytes, 10),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write manifest row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadManifest reads the manifest at path. An absent file yields
// ErrMissingInput. Rows are returned in file order; that order drives the
// deterministic downstream split.
func ReadManifest(path string) ([]model.ManifestRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("manifest '%s': %w", path, ErrMissingInput)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read manifest header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, required := range []string{"site_id", "visit_id", "defense_on"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("manifest '%s' is missing column '%s'", path, required)
		}
	}

	var rows []model.ManifestRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest row: %w", err)
		}

		row := model.ManifestRow{
			SiteID:  record[cols["site_id"]],
			VisitID: record[cols["visit_id"]],
		}
		row.DefenseOn, err = strconv.ParseBool(record[cols["defense_on"]])
		if err != nil {
			return nil, fmt.Errorf("manifest '%s' has a bad defense_on value '%s'", path, record[cols["defense_on"]])
		}
		// Optional columns: counts are recomputed from the session when absent.
		if i, ok := cols["pcap_path"]; ok {
			row.PCAPPath = record[i]
		}
		if i, ok := cols["parsed_path"]; ok {
			row.ParsedPath = record[i]
		}
		if i, ok := cols["packet_count"]; ok {
			row.PacketCount, _ = strconv.Atoi(record[i])
		}
		if i, ok := cols["total_bytes"]; ok {
			row.TotalBytes, _ = strconv.ParseInt(record[i], 10, 64)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
