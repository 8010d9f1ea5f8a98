package store

import (
	"fmt"
	"os"
	"path/filepath"

	"wfguard/internal/model"
)

const (
	// DefenseOffDir and DefenseOnDir are the storage subdirectories for the
	// two defense settings.
	DefenseOffDir = "defense_off"
	DefenseOnDir  = "defense_on"
)

// Store reads and writes parsed session files beneath a storage root, laid
// out as <root>/<defense_dir>/<site_id>/<visit_id><ext>.
type Store struct {
	root  string
	codec Codec
}

// NewStore creates a session store for the given root and format name.
func NewStore(root, format string) (*Store, error) {
	codec, err := NewCodec(format)
	if err != nil {
		return nil, err
	}
	return &Store{root: root, codec: codec}, nil
}

// Root returns the storage root this store operates on.
func (s *Store) Root() string { return s.root }

// SessionPath returns the on-disk location for one session identity.
func (s *Store) SessionPath(key model.SessionKey) string {
	defenseDir := DefenseOffDir
	if key.DefenseOn {
		defenseDir = DefenseOnDir
	}
	return filepath.Join(s.root, defenseDir, key.SiteID, key.VisitID+s.codec.Ext())
}

// RelativeSessionPath returns the session location relative to the root, as
// recorded in the manifest.
func (s *Store) RelativeSessionPath(key model.SessionKey) string {
	defenseDir := DefenseOffDir
	if key.DefenseOn {
		defenseDir = DefenseOnDir
	}
	return filepath.Join(defenseDir, key.SiteID, key.VisitID+s.codec.Ext())
}

// Load reads one session's packet records. An absent or unreadable file
// yields ErrMissingInput; an empty table or a missing required field yields
// ErrMalformedSession. Both are skip conditions for the caller, never fatal
// to the batch.
func (s *Store) Load(key model.SessionKey) ([]model.PacketRecord, error) {
	path := s.SessionPath(key)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("session file '%s': %w", path, ErrMissingInput)
	}
	return s.codec.Read(path)
}

// Save writes one session's packet records, creating parent directories as
// needed.
func (s *Store) Save(key model.SessionKey, records []model.PacketRecord) error {
	path := s.SessionPath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	return s.codec.Write(path, records)
}
