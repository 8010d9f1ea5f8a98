package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"wfguard/internal/model"
)

func init() {
	RegisterCodec("csv", func() Codec { return csvCodec{} })
}

// csvCodec stores a session as a CSV table with a
// timestamp,size,direction header.
type csvCodec struct{}

func (csvCodec) Ext() string { return ".csv" }

func (csvCodec) Read(path string) ([]model.PacketRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("session file '%s': %w", path, ErrMissingInput)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		// io.EOF here means an empty file.
		return nil, fmt.Errorf("session file '%s' has no header: %w", path, ErrMalformedSession)
	}

	// Required fields may appear in any column order.
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	tsCol, tsOK := cols["timestamp"]
	sizeCol, sizeOK := cols["size"]
	dirCol, dirOK := cols["direction"]
	if !tsOK || !sizeOK || !dirOK {
		return nil, fmt.Errorf("session file '%s' is missing a required column: %w", path, ErrMalformedSession)
	}

	var records []model.PacketRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("session file '%s' has an unreadable row: %w", path, ErrMalformedSession)
		}

		ts, err := strconv.ParseFloat(row[tsCol], 64)
		if err != nil {
			return nil, fmt.Errorf("session file '%s' has a bad timestamp '%s': %w", path, row[tsCol], ErrMalformedSession)
		}
		size, err := strconv.Atoi(row[sizeCol])
		if err != nil {
			return nil, fmt.Errorf("session file '%s' has a bad size '%s': %w", path, row[sizeCol], ErrMalformedSession)
		}
		dir, err := strconv.Atoi(row[dirCol])
		if err != nil {
			return nil, fmt.Errorf("session file '%s' has a bad direction '%s': %w", path, row[dirCol], ErrMalformedSession)
		}

		records = append(records, model.PacketRecord{Timestamp: ts, Size: size, Direction: dir})
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("session file '%s' has no rows: %w", path, ErrMalformedSession)
	}
	return records, nil
}

func (csvCodec) Write(path string, records []model.PacketRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create session file '%s': %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"timestamp", "size", "direction"}); err != nil {
		return fmt.Errorf("failed to write session header: %w", err)
	}
	for _, r := range records {
		row := []string{
			strconv.FormatFloat(r.Timestamp, 'f', 6, 64),
			strconv.Itoa(r.Size),
			strconv.Itoa(r.Direction),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write session row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
