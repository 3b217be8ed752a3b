package services

import (
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/poyrazK/domainfolio/internal/core/domain"
)

// DefaultRecentLimit is how many records the recent view keeps.
const DefaultRecentLimit = 20

// SearchDebounce is the delay applied to free-text search input before the
// predicate is evaluated.
const SearchDebounce = 300 * time.Millisecond

// FilterContext holds the state a predicate is resolved against.
type FilterContext struct {
	LabelAssignments map[string]string
	Folders          []domain.Folder
	Hidden           map[string]struct{}
}

// Filter returns the records matching pred in input order, without repeated
// ids. The hidden/visible partition always applies.
func Filter(records []domain.DomainRecord, pred domain.Predicate, fc FilterContext) []domain.DomainRecord {
	text := strings.ToLower(strings.TrimSpace(pred.Text))

	membership := make(map[string]int)
	for _, f := range fc.Folders {
		for _, id := range f.DomainIDs {
			membership[id]++
		}
	}
	selectedFolders := make(map[string]struct{}, len(pred.FolderIDs))
	noFolder := pred.NoFolder
	for _, id := range pred.FolderIDs {
		if id == domain.NoFolderID {
			noFolder = true
			continue
		}
		selectedFolders[id] = struct{}{}
	}
	inSelected := make(map[string]struct{})
	for _, f := range fc.Folders {
		if _, ok := selectedFolders[f.ID]; !ok {
			continue
		}
		for _, id := range f.DomainIDs {
			inSelected[id] = struct{}{}
		}
	}
	folderFilter := len(selectedFolders) > 0 || noFolder

	out := make([]domain.DomainRecord, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, dup := seen[r.ID]; dup {
			continue
		}

		_, hidden := fc.Hidden[r.ID]
		if hidden != pred.ShowHidden {
			continue
		}
		if text != "" && !matchesText(r, text) {
			continue
		}
		if len(pred.Types) > 0 && !slices.Contains(pred.Types, r.Type) {
			continue
		}
		if len(pred.Statuses) > 0 && !slices.Contains(pred.Statuses, r.Status) {
			continue
		}
		if len(pred.Projects) > 0 && !slices.Contains(pred.Projects, r.Project) {
			continue
		}
		if len(pred.Registrars) > 0 && !slices.Contains(pred.Registrars, r.Registrar) {
			continue
		}
		if pred.LabelID != "" && EffectiveLabel(r, fc.LabelAssignments) != pred.LabelID {
			continue
		}
		if folderFilter {
			_, inFolder := inSelected[r.ID]
			orphan := noFolder && membership[r.ID] == 0
			if !inFolder && !orphan {
				continue
			}
		}
		if pred.Scope != nil && !pred.Scope.Allows(r) {
			continue
		}

		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}

func matchesText(r domain.DomainRecord, text string) bool {
	return strings.Contains(strings.ToLower(r.Name), text) ||
		strings.Contains(strings.ToLower(r.Project), text) ||
		strings.Contains(strings.ToLower(r.Description), text)
}

// EffectiveLabel resolves a record's label. The assignment map wins over the
// id embedded in the record.
func EffectiveLabel(r domain.DomainRecord, assignments map[string]string) string {
	if id, ok := assignments[r.ID]; ok {
		return id
	}
	return r.LabelID
}

// Recent returns up to limit records ordered by UpdatedAt, newest first.
// Records without a parsable UpdatedAt sort as the Unix epoch.
func Recent(records []domain.DomainRecord, limit int) []domain.DomainRecord {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	sorted := slices.Clone(records)
	stamp := func(r domain.DomainRecord) time.Time {
		if t, ok := domain.ParseDate(r.UpdatedAt); ok {
			return t
		}
		return time.Unix(0, 0)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return stamp(sorted[i]).After(stamp(sorted[j]))
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// PruneSelection keeps only the selected ids still present in filtered.
func PruneSelection(selection []string, filtered []domain.DomainRecord) []string {
	visible := make(map[string]struct{}, len(filtered))
	for _, r := range filtered {
		visible[r.ID] = struct{}{}
	}
	out := make([]string, 0, len(selection))
	for _, id := range selection {
		if _, ok := visible[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Debouncer delays a call until no new trigger has arrived for the wait
// period. It is safe for concurrent use.
type Debouncer struct {
	wait  time.Duration
	mu    sync.Mutex
	timer *time.Timer
}

func NewDebouncer(wait time.Duration) *Debouncer {
	return &Debouncer{wait: wait}
}

// Trigger schedules fn, replacing any call still pending.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.wait, fn)
}

// Stop cancels a pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
