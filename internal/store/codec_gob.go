package store

import (
	"encoding/gob"
	"fmt"
	"os"

	"wfguard/internal/model"
)

func init() {
	RegisterCodec("gob", func() Codec { return gobCodec{} })
}

// gobCodec stores a session as a gob-encoded []model.PacketRecord. It is
// the compact binary alternative to the CSV format.
type gobCodec struct{}

func (gobCodec) Ext() string { return ".dat" }

func (gobCodec) Read(path string) ([]model.PacketRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("session file '%s': %w", path, ErrMissingInput)
	}
	defer file.Close()

	var records []model.PacketRecord
	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode session file '%s': %w", path, ErrMalformedSession)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("session file '%s' has no records: %w", path, ErrMalformedSession)
	}
	return records, nil
}

func (gobCodec) Write(path string, records []model.PacketRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create session file '%s': %w", path, err)
	}
	defer file.Close()

	encoder := gob.NewEncoder(file)
	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("failed to encode session to gob for '%s': %w", path, err)
	}
	return nil
}
