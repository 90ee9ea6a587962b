package storage

import (
	"fmt"

	"github.com/julianstephens/studylog/internal/logger"
	"github.com/julianstephens/studylog/internal/models"
)

type ChangeKind int

const (
	ChangeAdded ChangeKind = iota
	ChangeUpdated
	ChangeDeleted
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return fmt.Sprintf("ChangeKind(%d)", int(k))
	}
}

// FieldChange is the before and after value of one column in an update.
type FieldChange struct {
	Field  string
	Before any
	After  any
}

// MockChange is one row-level event in a bulk edit.
type MockChange struct {
	Kind ChangeKind
	ID   string
	// Record is the full row after the change; unused for deletes.
	Record models.MockTestResult
	Fields []FieldChange
}

// ChangeBatch is the complete set of edits between two versions of the table.
type ChangeBatch struct {
	Changes []MockChange
}

func (b ChangeBatch) Empty() bool { return len(b.Changes) == 0 }

// Counts returns the number of adds, updates and deletes.
func (b ChangeBatch) Counts() (added, updated, deleted int) {
	for _, c := range b.Changes {
		switch c.Kind {
		case ChangeAdded:
			added++
		case ChangeUpdated:
			updated++
		case ChangeDeleted:
			deleted++
		}
	}
	return added, updated, deleted
}

// DiffMockTests computes the row events that turn current into edited.
// Rows in edited with an empty or unknown id are adds, ids missing from
// edited are deletes, and rows whose allow-listed fields differ are updates.
func DiffMockTests(current, edited []models.MockTestResult) ChangeBatch {
	before := make(map[string]models.MockTestResult, len(current))
	for _, m := range current {
		before[m.ID] = m
	}

	var batch ChangeBatch
	seen := make(map[string]bool, len(edited))
	for _, m := range edited {
		old, ok := before[m.ID]
		if m.ID == "" || !ok {
			batch.Changes = append(batch.Changes, MockChange{Kind: ChangeAdded, ID: m.ID, Record: m})
			continue
		}
		seen[m.ID] = true

		var fields []FieldChange
		for _, f := range mockFields {
			a, b := f.get(old), f.get(m)
			if a != b {
				fields = append(fields, FieldChange{Field: f.name, Before: a, After: b})
			}
		}
		if len(fields) > 0 {
			batch.Changes = append(batch.Changes, MockChange{Kind: ChangeUpdated, ID: m.ID, Record: m, Fields: fields})
		}
	}

	for _, m := range current {
		if !seen[m.ID] {
			batch.Changes = append(batch.Changes, MockChange{Kind: ChangeDeleted, ID: m.ID, Record: m})
		}
	}
	return batch
}

// ChangeFailure pairs a rejected event with its error.
type ChangeFailure struct {
	Change MockChange
	Err    error
}

type BatchResult struct {
	Added    []string
	Updated  int
	Deleted  int
	Failures []ChangeFailure
}

// ApplyBatch writes each event as its own atomic statement. A failing event
// is recorded and the rest still run.
func (r *MockTestRepository) ApplyBatch(batch ChangeBatch) BatchResult {
	var res BatchResult
	for _, c := range batch.Changes {
		var err error
		switch c.Kind {
		case ChangeAdded:
			rec := c.Record
			rec.ID = ""
			var id string
			if id, err = r.Insert(rec); err == nil {
				res.Added = append(res.Added, id)
			}
		case ChangeUpdated:
			if err = r.Update(c.ID, c.Record); err == nil {
				res.Updated++
			}
		case ChangeDeleted:
			if err = r.Delete(c.ID); err == nil {
				res.Deleted++
			}
		default:
			err = fmt.Errorf("unknown change kind %v", c.Kind)
		}
		if err != nil {
			logger.Warn("bulk edit change rejected", "kind", c.Kind, "id", c.ID, "error", err)
			res.Failures = append(res.Failures, ChangeFailure{Change: c, Err: err})
		}
	}
	return res
}
