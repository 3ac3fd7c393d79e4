package app

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/solidkart/internal/domain/report"
	"github.com/xenking/solidkart/internal/storage/postgres"
)

// NewReportSaver builds the saver described by cfg: one saver per sink, each
// retried on its own and written concurrently when there are several, then
// deduplicated as configured. pool may be nil when no postgres sink is used.
func NewReportSaver(cfg ReportConfig, pool *pgxpool.Pool) (report.Saver, error) {
	sinks := make([]report.Saver, 0, len(cfg.Sinks))
	for _, sink := range cfg.Sinks {
		switch sink {
		case SinkNop:
			sinks = append(sinks, report.NopSaver{})
		case SinkFile:
			sinks = append(sinks, report.NewFileSaver(cfg.Dir, cfg.Compress))
		case SinkPostgres:
			if pool == nil {
				return nil, errors.New("postgres sink requires a database pool")
			}
			sinks = append(sinks, postgres.NewReportRepository(pool))
		default:
			return nil, errors.Errorf("unknown report sink %q", sink)
		}
	}
	return composeSavers(cfg, sinks)
}

// composeSavers decorates sinks according to cfg. Retries wrap each sink
// separately so that a sink which already stored a report is not asked to
// store it again when another sink fails.
func composeSavers(cfg ReportConfig, sinks []report.Saver) (report.Saver, error) {
	if len(sinks) == 0 {
		return nil, errors.New("no report sinks configured")
	}

	savers := make(report.MultiSaver, 0, len(sinks))
	for _, s := range sinks {
		if cfg.Retries > 1 {
			s = report.NewRetrySaver(s, uint(cfg.Retries), cfg.RetryDelay)
		}
		savers = append(savers, s)
	}

	var s report.Saver = savers
	if len(savers) == 1 {
		s = savers[0]
	}
	if cfg.Dedup {
		s = report.NewDedupSaver(s, uint(cfg.DedupCapacity))
	}
	return s, nil
}

// defaultRetryDelay is used by tools that build a saver without a Config.
const defaultRetryDelay = 100 * time.Millisecond

// DefaultReportConfig returns a configuration that discards reports. Tools
// switch to the file sink by setting Sinks and Dir.
func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		Sinks:         []string{SinkNop},
		DedupCapacity: 100000,
		Retries:       1,
		RetryDelay:    defaultRetryDelay,
	}
}
