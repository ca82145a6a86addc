package metrics

import (
	"database/sql"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// The pgx pool and the sql.DB are separate pools. Sampling one must not
// overwrite the gauges of the other.
func TestDBStatsCollector_PoolsReportedSeparately(t *testing.T) {
	// sql.Open does not connect, so the handle's stats are usable without
	// a database
	db, err := sql.Open("pgx", "postgres://localhost:5432/geovoyage")
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(7)

	DBConnectionsMaxOpen.WithLabelValues("pgx").Set(11)

	collector := NewDBStatsCollector(nil, db)
	collector.collect()

	if got := testutil.ToFloat64(DBConnectionsMaxOpen.WithLabelValues("sql")); got != 7 {
		t.Errorf("expected sql pool max open 7, got %v", got)
	}
	if got := testutil.ToFloat64(DBConnectionsMaxOpen.WithLabelValues("pgx")); got != 11 {
		t.Errorf("pgx pool gauge was overwritten by sql pool stats, got %v", got)
	}
}
