package transfer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/example/clinic-scheduler/internal/clinic"
)

// ErrNotAnArray is returned when an import document's root is not an array.
var ErrNotAnArray = errors.New("transfer: import must be a JSON array")

// SyntaxError reports an import document that is not JSON at all.
type SyntaxError struct {
	Err error
}

func (e *SyntaxError) Error() string { return "transfer: invalid json: " + e.Err.Error() }
func (e *SyntaxError) Unwrap() error { return e.Err }

// RecordError reports an array entry that could not be imported. Fields is
// keyed by JSON field name.
type RecordError struct {
	Index  int
	Fields map[string]string
}

func (e *RecordError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return fmt.Sprintf("transfer: record %d: %s", e.Index, strings.Join(parts, ", "))
}

// Report summarizes an import.
type Report struct {
	Added    int `json:"added"`
	Replaced int `json:"replaced"`
	Total    int `json:"total"`
}

// Partitions is the pair of appointment lists an import reconciles against.
type Partitions struct {
	Active   []clinic.Appointment
	Archived []clinic.Appointment
}

// Reconcile merges the appointments in raw into current by ID. Entries that
// are not objects are skipped. A matching ID replaces the existing record in
// place; anything else is appended. Records without an ID are given one from
// newID. The result is sorted by date. On any error current is left untouched
// and no result is returned.
func Reconcile(current []clinic.Appointment, raw []byte, newID func() string) ([]clinic.Appointment, Report, error) {
	merged, report, err := ReconcilePartitions(Partitions{Active: current}, raw, newID)
	if err != nil {
		return nil, Report{}, err
	}
	return merged.Active, report, nil
}

// ReconcilePartitions works like Reconcile but also matches IDs held in the
// archive. An archived match is replaced where it is, so an ID never ends up
// in both lists. New records go to the active list. Total counts the active
// list.
func ReconcilePartitions(current Partitions, raw []byte, newID func() string) (Partitions, Report, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return Partitions{}, Report{}, ErrNotAnArray
		}
		return Partitions{}, Report{}, &SyntaxError{Err: err}
	}
	if entries == nil {
		// A literal null decodes without error.
		return Partitions{}, Report{}, ErrNotAnArray
	}

	type slot struct {
		archived bool
		at       int
	}
	active := make([]clinic.Appointment, len(current.Active))
	archived := make([]clinic.Appointment, len(current.Archived))
	index := make(map[clinic.ID]slot, len(active)+len(archived))
	for i, a := range current.Archived {
		archived[i] = a.Clone()
		index[a.ID] = slot{archived: true, at: i}
	}
	for i, a := range current.Active {
		active[i] = a.Clone()
		index[a.ID] = slot{at: i}
	}

	var report Report
	for i, entry := range entries {
		if !isObject(entry) {
			continue
		}
		var a clinic.Appointment
		if err := json.Unmarshal(entry, &a); err != nil {
			return Partitions{}, Report{}, &RecordError{Index: i, Fields: map[string]string{"record": err.Error()}}
		}
		a = a.Normalize()
		if problems := a.Problems(); problems != nil {
			return Partitions{}, Report{}, &RecordError{Index: i, Fields: problems}
		}
		if a.ID == "" && newID != nil {
			a.ID = clinic.ID(newID())
		}

		if s, ok := index[a.ID]; ok && a.ID != "" {
			if s.archived {
				archived[s.at] = a
			} else {
				active[s.at] = a
			}
			report.Replaced++
			continue
		}
		index[a.ID] = slot{at: len(active)}
		active = append(active, a)
		report.Added++
	}

	clinic.SortByDate(active)
	clinic.SortByDate(archived)
	report.Total = len(active)
	return Partitions{Active: active, Archived: archived}, report, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
