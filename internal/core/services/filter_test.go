package services

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/poyrazK/domainfolio/internal/core/domain"
	"github.com/poyrazK/domainfolio/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func filterFixtures() []domain.DomainRecord {
	a := testutil.Seed("d1", "shop.com", domain.StatusActual, "")
	a.Registrar = "Namecheap"
	a.LabelID = "l-embedded"
	b := testutil.Seed("d2", "blog.net", domain.StatusSpare, "")
	b.Project = "Media"
	b.Description = "Company shop blog"
	b.Type = domain.TypeSEO
	b.Registrar = "GoDaddy"
	c := testutil.Seed("d3", "mirror.kz", domain.StatusExpiring, "")
	c.Department = "IT"
	c.Registrar = "PS.kz"
	return []domain.DomainRecord{a, b, c}
}

func TestFilter(t *testing.T) {
	records := filterFixtures()
	fc := FilterContext{
		LabelAssignments: map[string]string{"d2": "l-assigned", "d1": ""},
		Folders: []domain.Folder{
			{ID: "f1", DomainIDs: []string{"d1"}},
			{ID: "f2", DomainIDs: []string{"d1", "d2"}},
		},
		Hidden: map[string]struct{}{},
	}

	tests := []struct {
		name string
		pred domain.Predicate
		want []string
	}{
		{"identity", domain.Predicate{}, []string{"d1", "d2", "d3"}},
		{"text matches name case-insensitively", domain.Predicate{Text: "SHOP"}, []string{"d1", "d2"}},
		{"text matches project", domain.Predicate{Text: "media"}, []string{"d2"}},
		{"type", domain.Predicate{Types: []domain.DomainType{domain.TypeSEO}}, []string{"d2"}},
		{"derived status", domain.Predicate{Statuses: []domain.Status{domain.StatusExpiring}}, []string{"d3"}},
		{"project", domain.Predicate{Projects: []string{"Retail"}}, []string{"d1", "d3"}},
		{"registrar", domain.Predicate{Registrars: []string{"PS.kz", "Namecheap"}}, []string{"d1", "d3"}},
		{"assignment wins over embedded label", domain.Predicate{LabelID: "l-embedded"}, []string{}},
		{"assigned label", domain.Predicate{LabelID: "l-assigned"}, []string{"d2"}},
		{"any selected folder", domain.Predicate{FolderIDs: []string{"f1", "f2"}}, []string{"d1", "d2"}},
		{"no folder flag", domain.Predicate{NoFolder: true}, []string{"d3"}},
		{"no folder sentinel", domain.Predicate{FolderIDs: []string{domain.NoFolderID}}, []string{"d3"}},
		{"folder or none", domain.Predicate{FolderIDs: []string{"f1", domain.NoFolderID}}, []string{"d1", "d3"}},
		{"scope", domain.Predicate{Scope: &domain.UserScope{Departments: []string{"IT"}}}, []string{"d3"}},
		{"and-combined", domain.Predicate{Projects: []string{"Retail"}, Text: "mirror"}, []string{"d3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(records, tt.pred, fc)))
		})
	}
}

func TestFilter_HiddenPartition(t *testing.T) {
	records := filterFixtures()
	fc := FilterContext{Hidden: map[string]struct{}{"d2": {}}}

	visible := ids(Filter(records, domain.Predicate{}, fc))
	hidden := ids(Filter(records, domain.Predicate{ShowHidden: true}, fc))

	assert.Equal(t, []string{"d1", "d3"}, visible)
	assert.Equal(t, []string{"d2"}, hidden)
}

func TestFilter_DropsRepeatedIDs(t *testing.T) {
	records := filterFixtures()
	records = append(records, records[0])
	assert.Equal(t, []string{"d1", "d2", "d3"}, ids(Filter(records, domain.Predicate{}, FilterContext{})))
}

func TestRecent(t *testing.T) {
	records := filterFixtures()
	records[0].UpdatedAt = "2025-01-01T00:00:00Z"
	records[1].UpdatedAt = ""
	records[2].UpdatedAt = "2025-03-01"

	assert.Equal(t, []string{"d3", "d1", "d2"}, ids(Recent(records, 0)))
	assert.Equal(t, []string{"d3"}, ids(Recent(records, 1)))
	// The input is not reordered.
	assert.Equal(t, []string{"d1", "d2", "d3"}, ids(records))
}

func TestRecent_DefaultLimit(t *testing.T) {
	var records []domain.DomainRecord
	for i := 0; i < 30; i++ {
		records = append(records, testutil.Seed(string(rune('a'+i)), "x.com", domain.StatusActual, ""))
	}
	assert.Len(t, Recent(records, 0), DefaultRecentLimit)
}

func TestPruneSelection(t *testing.T) {
	filtered := filterFixtures()[:2]
	assert.Equal(t, []string{"d2", "d1"}, PruneSelection([]string{"d2", "d3", "d1"}, filtered))
	assert.Empty(t, PruneSelection([]string{"d3"}, filtered))
}

func TestDebouncer(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	for i := 0; i < 5; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDebouncer_Stop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}
