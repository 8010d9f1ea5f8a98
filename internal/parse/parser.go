// Package parse turns raw per-visit pcap captures into the parsed session
// files and the manifest consumed by the dataset build stage.
package parse

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"wfguard/internal/config"
	"wfguard/internal/model"
	"wfguard/internal/store"
	"wfguard/pkg/pcap"
)

// DiscoveredPCAP is one capture found under the pcap root.
type DiscoveredPCAP struct {
	Key  model.SessionKey
	Path string // relative to the root
}

// Discover walks root for defense_off/<site>/*.pcap and
// defense_on/<site>/*.pcap, in sorted order so the resulting manifest order
// is deterministic.
func Discover(root string) ([]DiscoveredPCAP, error) {
	var found []DiscoveredPCAP

	for _, defenseDir := range []string{store.DefenseOffDir, store.DefenseOnDir} {
		defensePath := filepath.Join(root, defenseDir)
		sites, err := os.ReadDir(defensePath)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read '%s': %w", defensePath, err)
		}
		defenseOn := defenseDir == store.DefenseOnDir

		for _, site := range sites {
			if !site.IsDir() {
				continue
			}
			captures, err := os.ReadDir(filepath.Join(defensePath, site.Name()))
			if err != nil {
				return nil, fmt.Errorf("failed to read site directory: %w", err)
			}
			for _, capture := range captures {
				name := capture.Name()
				if capture.IsDir() || !strings.HasSuffix(name, ".pcap") {
					continue
				}
				stem := strings.TrimSuffix(name, ".pcap")
				if !strings.HasPrefix(stem, "visit_") {
					stem = "visit_" + stem
				}
				found = append(found, DiscoveredPCAP{
					Key: model.SessionKey{
						SiteID:    site.Name(),
						VisitID:   stem,
						DefenseOn: defenseOn,
					},
					Path: filepath.Join(defenseDir, site.Name(), name),
				})
			}
		}
	}
	return found, nil
}

// Parser runs the pcap-to-session stage: every discovered capture becomes
// one parsed session file, and the batch produces one manifest.
type Parser struct {
	root     string
	sessions *store.Store
}

// NewParser creates a parser from the parse section of the configuration.
func NewParser(cfg *config.Config) (*Parser, error) {
	sessions, err := store.NewStore(cfg.Parse.OutputDir, cfg.Parse.Format)
	if err != nil {
		return nil, err
	}
	return &Parser{root: cfg.Parse.PCAPRoot, sessions: sessions}, nil
}

// Run parses all discovered captures and writes the manifest. Per-capture
// failures are logged and skipped; the returned rows describe only the
// sessions that were written.
func (p *Parser) Run() ([]model.ManifestRow, error) {
	found, err := Discover(p.root)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Discovered %d pcap files under '%s'", len(found), p.root)

	var rows []model.ManifestRow
	for _, capture := range found {
		records, err := p.parseOne(filepath.Join(p.root, capture.Path))
		if err != nil {
			logrus.Warnf("Parse failed for '%s': %v", capture.Path, err)
			continue
		}
		if len(records) == 0 {
			logrus.Warnf("Empty capture '%s', skipping", capture.Path)
			continue
		}
		if err := p.sessions.Save(capture.Key, records); err != nil {
			return nil, err
		}

		var totalBytes int64
		for _, r := range records {
			totalBytes += int64(r.Size)
		}
		rows = append(rows, model.ManifestRow{
			SiteID:      capture.Key.SiteID,
			VisitID:     capture.Key.VisitID,
			DefenseOn:   capture.Key.DefenseOn,
			PCAPPath:    capture.Path,
			ParsedPath:  p.sessions.RelativeSessionPath(capture.Key),
			PacketCount: len(records),
			TotalBytes:  totalBytes,
		})
	}

	if len(rows) > 0 {
		manifestPath := filepath.Join(p.sessions.Root(), store.ManifestName)
		if err := store.WriteManifest(manifestPath, rows); err != nil {
			return nil, err
		}
		logrus.Infof("Wrote manifest (%d sessions) -> %s", len(rows), manifestPath)
	}
	return rows, nil
}

// parseOne decodes one capture and resolves packet directions from the
// session's connection roles.
func (p *Parser) parseOne(path string) ([]model.PacketRecord, error) {
	reader, err := pcap.NewReader(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	packets, skipped, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		logrus.Debugf("Skipped %d undecodable packets in '%s'", skipped, path)
	}
	return ResolveDirections(packets), nil
}
