// Package sqlite extracts bioactivity records from a ChEMBL SQLite dump for
// the update pipeline.  The dump is opened read-only; refinement output goes
// to the parquet activity store, never back into the database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/turtacn/ctapred/internal/domain/reference"
	"github.com/turtacn/ctapred/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ctapred/pkg/errors"
)

// activityQuery joins the ChEMBL activity, compound, and target tables down
// to the five columns the reference builder needs.  Only nM measurements of
// single-protein targets with an accession are usable downstream.
const activityQuery = `
SELECT md.chembl_id,
       cs.canonical_smiles,
       td.chembl_id,
       cseq.accession,
       act.standard_value
FROM activities act
JOIN assays ass            ON act.assay_id = ass.assay_id
JOIN target_dictionary td  ON ass.tid = td.tid
JOIN target_components tcp ON td.tid = tcp.tid
JOIN component_sequences cseq ON tcp.component_id = cseq.component_id
JOIN molecule_dictionary md ON act.molregno = md.molregno
JOIN compound_structures cs ON md.molregno = cs.molregno
WHERE act.standard_units = 'nM'
  AND act.standard_value IS NOT NULL
  AND td.target_type = 'SINGLE PROTEIN'
  AND cseq.accession IS NOT NULL
ORDER BY md.chembl_id, td.chembl_id, act.standard_value`

// ChEMBLStore wraps a read-only connection to a ChEMBL SQLite dump.
type ChEMBLStore struct {
	db     *sql.DB
	logger logging.Logger
}

// OpenChEMBL opens the SQLite dump at path.  The connection is validated
// immediately so that a wrong path fails here, not mid-extraction.
func OpenChEMBL(path string, logger logging.Logger) (*ChEMBLStore, error) {
	if logger == nil {
		logger = logging.Default()
	}
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "open ChEMBL database")
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.MissingInput("ChEMBL database not readable").WithDetail(path).WithCause(err)
	}
	return &ChEMBLStore{db: db, logger: logger}, nil
}

// Close releases the database connection.
func (s *ChEMBLStore) Close() error {
	return s.db.Close()
}

// ExtractActivities streams the joined activity rows into memory.  Rows that
// fail to scan or carry empty key columns are skipped and counted; a handful
// of malformed rows in a multi-million-row dump must not abort the refresh.
func (s *ChEMBLStore) ExtractActivities(ctx context.Context) ([]reference.ActivityRecord, int, error) {
	rows, err := s.db.QueryContext(ctx, activityQuery)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeStorage, "query ChEMBL activities")
	}
	defer rows.Close()

	var out []reference.ActivityRecord
	skipped := 0
	for rows.Next() {
		var rec reference.ActivityRecord
		if err := rows.Scan(&rec.CompoundID, &rec.Structure, &rec.TargetID, &rec.ProteinID, &rec.ActivityNM); err != nil {
			skipped++
			continue
		}
		if rec.CompoundID == "" || rec.Structure == "" || rec.TargetID == "" || rec.ActivityNM <= 0 {
			skipped++
			continue
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, skipped, errors.Wrap(err, errors.CodeStorage, "iterate ChEMBL activities")
	}

	s.logger.Info("ChEMBL activities extracted",
		logging.Int("rows", len(out)),
		logging.Int("skipped", skipped))
	return out, skipped, nil
}

// Version reads the ChEMBL release name from the dump's version table, e.g.
// "ChEMBL_34".  Missing version information degrades to "unknown" rather
// than failing the refresh.
func (s *ChEMBLStore) Version(ctx context.Context) string {
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM version LIMIT 1`).Scan(&name)
	if err != nil || name == "" {
		return "unknown"
	}
	return name
}
