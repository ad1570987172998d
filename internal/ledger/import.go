package ledger

import (
	"context"
	"fmt"

	"github.com/colonyops/violations/internal/core/eventbus"
	"github.com/colonyops/violations/internal/core/violation"
)

// ImportResult summarizes an Import.
type ImportResult struct {
	Added    int
	Skipped  int
	Warnings []error
}

// Import appends records from a previous export. Records whose id is already
// live (or repeated within the batch) are skipped; missing ids are generated,
// unknown statuses become open and a missing CreatedAt is set to now. The
// collection is persisted once.
func (s *Store) Import(ctx context.Context, records []violation.Record) (ImportResult, error) {
	var res ImportResult
	added := make([]violation.Record, 0, len(records))

	taken := func(id string) bool {
		if s.indexOf(id) >= 0 {
			return true
		}
		for _, r := range added {
			if r.ID == id {
				return true
			}
		}
		return false
	}

	for _, r := range records {
		if r.ID == "" {
			id, err := freshID(s.ids, taken)
			if err != nil {
				return res, err
			}
			r.ID = id
		} else if taken(r.ID) {
			res.Skipped++
			continue
		}

		if !r.Status.IsValid() {
			res.Warnings = append(res.Warnings, fmt.Errorf("record %q: %w %q, imported as %s", r.ID, violation.ErrInvalidStatus, r.Status, violation.StatusOpen))
			r.Status = violation.StatusOpen
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = s.now()
		}
		added = append(added, r)
	}

	res.Added = len(added)
	if res.Added == 0 {
		return res, nil
	}

	s.records = append(s.records, added...)
	err := s.saveRecords(ctx)

	s.bus.PublishRecordsImported(eventbus.RecordsImportedPayload{
		Added:    res.Added,
		Skipped:  res.Skipped,
		Snapshot: s.Snapshot(),
	})
	return res, err
}
