// Package seed provides the read-only baseline of domain records.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"slices"

	"github.com/poyrazK/domainfolio/internal/core/domain"
	"gopkg.in/yaml.v3"
)

//go:embed domains.yaml
var defaultSeed []byte

type seedFile struct {
	Domains []domain.DomainRecord `yaml:"domains"`
}

// Source serves a fixed set of records loaded once at startup.
type Source struct {
	records []domain.DomainRecord
}

// New wraps already decoded records.
func New(records []domain.DomainRecord) *Source {
	return &Source{records: records}
}

// Load reads the seed from path, or the bundled dataset when path is empty.
func Load(path string) (*Source, error) {
	data := defaultSeed
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
	}
	records, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return New(records), nil
}

// Parse decodes a YAML seed document. Ids must be present, unique, and must
// not use the prefix reserved for created domains.
func Parse(data []byte) ([]domain.DomainRecord, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	seen := make(map[string]struct{}, len(f.Domains))
	for i := range f.Domains {
		rec := &f.Domains[i]
		if rec.ID == "" {
			return nil, fmt.Errorf("seed record %d: missing id", i)
		}
		if domain.IsSyntheticID(rec.ID) {
			return nil, fmt.Errorf("seed record %s: id prefix %q is reserved", rec.ID, domain.NewIDPrefix)
		}
		if _, dup := seen[rec.ID]; dup {
			return nil, fmt.Errorf("seed record %s: duplicate id", rec.ID)
		}
		seen[rec.ID] = struct{}{}
		rec.ApplyDefaults()
	}
	return f.Domains, nil
}

func (s *Source) Domains(_ context.Context) ([]domain.DomainRecord, error) {
	return slices.Clone(s.records), nil
}
