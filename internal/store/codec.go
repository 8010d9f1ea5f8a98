package store

import (
	"fmt"

	"wfguard/internal/model"
)

// Codec reads and writes one session's packet records in a concrete on-disk
// format.
type Codec interface {
	// Ext returns the file extension for this format, dot included.
	Ext() string

	// Read decodes the session file at path. It returns ErrMalformedSession
	// (wrapped) when the table is empty or a required field is missing.
	Read(path string) ([]model.PacketRecord, error)

	// Write encodes records to the file at path, replacing it.
	Write(path string, records []model.PacketRecord) error
}

// CodecFactory creates a codec instance.
type CodecFactory func() Codec

// registry holds the mapping of format names to their codec factories.
var registry = make(map[string]CodecFactory)

// RegisterCodec registers a new session format with its factory function.
func RegisterCodec(name string, factory CodecFactory) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("session format '%s' already registered", name))
	}
	registry[name] = factory
}

// NewCodec returns the codec registered under the given format name.
func NewCodec(name string) (Codec, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown session format: '%s'", name)
	}
	return factory(), nil
}
