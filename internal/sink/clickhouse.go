package sink

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/sirupsen/logrus"

	"wfguard/internal/config"
	"wfguard/internal/model"
)

const createTableStatement = `
CREATE TABLE IF NOT EXISTS wf_sessions (
    BuildID      String,
    BuildTime    DateTime,
    SiteID       String,
    VisitID      String,
    DefenseOn    UInt8,
    Split        String,
    PacketCount  UInt32,
    TotalBytes   UInt64,
    VectorLength UInt32
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(BuildTime)
ORDER BY (BuildID, SiteID, VisitID);
`

// ClickHouseSink implements the model.Sink interface for ClickHouse. Each
// build inserts one row per retained session, carrying the split assignment
// and the overhead counters.
type ClickHouseSink struct {
	conn driver.Conn
}

// NewClickHouseSink connects to ClickHouse and ensures the table exists.
func NewClickHouseSink(cfg config.ClickHouseConfig) (*ClickHouseSink, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	if err := conn.Exec(context.Background(), createTableStatement); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	logrus.Info("Connected to ClickHouse and ensured wf_sessions exists")

	return &ClickHouseSink{conn: conn}, nil
}

func connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}
	return conn, nil
}

// Name identifies the sink in logs.
func (s *ClickHouseSink) Name() string { return "clickhouse" }

// Write inserts the retained sessions of one build as a single batch.
func (s *ClickHouseSink) Write(summary *model.BuildSummary, rows []model.SessionRow) error {
	if len(rows) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(context.Background(), "INSERT INTO wf_sessions")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, row := range rows {
		defenseOn := uint8(0)
		if row.Meta.DefenseOn {
			defenseOn = 1
		}
		err = batch.Append(
			summary.BuildID,
			summary.CreatedAt,
			row.Meta.SiteID,
			row.Meta.VisitID,
			defenseOn,
			string(row.Split),
			uint32(row.Meta.PacketCount),
			uint64(row.Meta.TotalBytes),
			uint32(summary.VectorLength),
		)
		if err != nil {
			return fmt.Errorf("failed to append session to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	logrus.Infof("Wrote %d session rows to ClickHouse for build %s", len(rows), summary.BuildID)
	return nil
}

// Close closes the ClickHouse connection.
func (s *ClickHouseSink) Close() {
	if s.conn != nil {
		s.conn.Close()
	}
}
