package dataset

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"wfguard/internal/config"
	"wfguard/internal/feature"
	"wfguard/internal/model"
	"wfguard/internal/store"
)

// Split is one assembled partition: a feature matrix and its row-aligned
// metadata table.
type Split struct {
	Matrix *Matrix
	Meta   []model.Metadata
}

// Result is the complete in-memory product of one build, owned exclusively
// by the assembler until it is written out.
type Result struct {
	Summary model.BuildSummary
	Splits  map[model.SplitLabel]*Split

	// Rows lists every retained session with its split assignment, in
	// corpus order. It backs the overhead table and the sinks.
	Rows []model.SessionRow
}

// Builder runs the full dataset construction pass: per-session load, filter
// and extract stages fan out over a worker pool; the global balance, split
// and assemble stages run after every per-session result has joined.
type Builder struct {
	sessions   *store.Store
	parsedDir  string
	filter     QualityFilter
	opts       feature.Options
	balance    bool
	ratios     Ratios
	seed       int64
	numWorkers int
}

// NewBuilder creates a builder from the build section of the configuration.
func NewBuilder(cfg *config.Config) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sessions, err := store.NewStore(cfg.Build.ParsedDir, cfg.Build.Format)
	if err != nil {
		return nil, err
	}
	return &Builder{
		sessions:  sessions,
		parsedDir: cfg.Build.ParsedDir,
		filter:    QualityFilter{MinPackets: cfg.Build.MinPackets},
		opts: feature.Options{
			MaxPackets:     cfg.Build.MaxPackets,
			IncludeIAT:     cfg.Build.IncludeIAT,
			NormalizeSizes: true,
			NormalizeTimes: true,
			SizeScale:      cfg.Build.SizeScale,
			TimeScale:      cfg.Build.TimeScale,
		},
		balance:    cfg.Build.Balance,
		ratios:     Ratios{Train: cfg.Build.Ratios.Train, Val: cfg.Build.Ratios.Val, Test: cfg.Build.Ratios.Test},
		seed:       cfg.Build.Seed,
		numWorkers: cfg.Build.NumWorkers,
	}, nil
}

// sessionResult is the outcome of the per-session stages for one manifest
// row. Exactly one of sample/drop is meaningful.
type sessionResult struct {
	ok     bool
	sample model.Sample
	drop   dropReason
}

type dropReason int

const (
	dropNone dropReason = iota
	dropMissing
	dropMalformed
	dropTooShort
)

// Run executes the pipeline and returns the assembled result. It fails with
// a wrapped store.ErrMissingInput when the manifest is absent and with
// ErrEmptyCorpus when no session survives filtering.
func (b *Builder) Run() (*Result, error) {
	manifestPath := filepath.Join(b.parsedDir, store.ManifestName)
	rows, err := store.ReadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("manifest '%s' is empty", manifestPath)
	}

	// Per-session stages are independent and read-only; fan them out and
	// slot results by manifest index so corpus order does not depend on
	// worker scheduling.
	results := make([]sessionResult, len(rows))
	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(b.numWorkers)
	for w := 0; w < b.numWorkers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = b.processSession(rows[i])
			}
		}()
	}
	for i := range rows {
		jobs <- i
	}
	close(jobs)
	wg.Wait() // barrier: global stages need the complete corpus

	var samples []model.Sample
	var dropped model.DropReport
	for _, r := range results {
		switch {
		case r.ok:
			samples = append(samples, r.sample)
		case r.drop == dropMissing:
			dropped.Missing++
		case r.drop == dropMalformed:
			dropped.Malformed++
		case r.drop == dropTooShort:
			dropped.TooShort++
		}
	}
	if dropped.Total() > 0 {
		logrus.WithFields(logrus.Fields{
			"missing":   dropped.Missing,
			"malformed": dropped.Malformed,
			"too_short": dropped.TooShort,
		}).Infof("Dropped %d sessions (quality)", dropped.Total())
	}
	if len(samples) == 0 {
		return nil, ErrEmptyCorpus
	}

	var balanceReport model.BalanceReport
	if b.balance {
		samples, balanceReport = Balance(samples)
		logrus.Infof("After balance: %d sessions across %d groups", len(samples), balanceReport.Groups)
	}

	metas := make([]model.Metadata, len(samples))
	for i, s := range samples {
		metas[i] = s.Meta
	}
	assign := SplitVisits(metas, b.ratios, b.seed)

	result := &Result{
		Splits: make(map[model.SplitLabel]*Split, len(model.Splits)),
		Rows:   make([]model.SessionRow, 0, len(samples)),
	}
	vectors := make(map[model.SplitLabel][][]float32, len(model.Splits))
	for _, label := range model.Splits {
		result.Splits[label] = &Split{Meta: []model.Metadata{}}
	}
	for _, s := range samples {
		label := assign[s.Meta.Visit()]
		vectors[label] = append(vectors[label], s.Vector)
		result.Splits[label].Meta = append(result.Splits[label].Meta, s.Meta)
		result.Rows = append(result.Rows, model.SessionRow{Meta: s.Meta, Split: label})
	}
	for _, label := range model.Splits {
		matrix, err := Stack(vectors[label], b.opts.VectorLength())
		if err != nil {
			return nil, fmt.Errorf("failed to stack %s matrix: %w", label, err)
		}
		result.Splits[label].Matrix = matrix
	}

	result.Summary = model.BuildSummary{
		BuildID:      uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		Sessions:     len(rows),
		Retained:     len(samples),
		Dropped:      dropped,
		Balance:      balanceReport,
		Splits: model.SplitSizes{
			Train: result.Splits[model.SplitTrain].Matrix.Rows,
			Val:   result.Splits[model.SplitVal].Matrix.Rows,
			Test:  result.Splits[model.SplitTest].Matrix.Rows,
		},
		VectorLength: b.opts.VectorLength(),
		MaxPackets:   b.opts.MaxPackets,
		Seed:         b.seed,
	}

	logrus.WithFields(logrus.Fields{
		"train": result.Summary.Splits.Train,
		"val":   result.Summary.Splits.Val,
		"test":  result.Summary.Splits.Test,
	}).Infof("Assembled %d samples, vector length %d", len(samples), b.opts.VectorLength())

	return result, nil
}

// processSession runs the per-session stages for one manifest row.
func (b *Builder) processSession(row model.ManifestRow) sessionResult {
	records, err := b.sessions.Load(row.Key())
	if err != nil {
		switch {
		case errors.Is(err, store.ErrMissingInput):
			return sessionResult{drop: dropMissing}
		case errors.Is(err, store.ErrMalformedSession):
			return sessionResult{drop: dropMalformed}
		default:
			logrus.Warnf("Unexpected load error for %s/%s: %v", row.SiteID, row.VisitID, err)
			return sessionResult{drop: dropMalformed}
		}
	}
	if !b.filter.Accept(records) {
		return sessionResult{drop: dropTooShort}
	}

	meta := model.Metadata{
		SiteID:      row.SiteID,
		VisitID:     row.VisitID,
		DefenseOn:   row.DefenseOn,
		PacketCount: row.PacketCount,
		TotalBytes:  row.TotalBytes,
	}
	// Manifests from older parse runs may lack counts; recompute from the
	// records themselves.
	if meta.PacketCount <= 0 {
		meta.PacketCount = len(records)
	}
	if meta.TotalBytes <= 0 {
		for _, r := range records {
			meta.TotalBytes += int64(r.Size)
		}
	}

	return sessionResult{ok: true, sample: model.Sample{
		Vector: feature.Extract(records, b.opts),
		Meta:   meta,
	}}
}
