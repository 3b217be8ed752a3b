package services

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/poyrazK/domainfolio/internal/core/domain"
	"github.com/poyrazK/domainfolio/internal/core/ports"
)

func checkLabel(labels []domain.Label, in domain.Label, selfID string) (domain.Label, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, domain.NewValidationError("name", "label name cannot be empty")
	}
	if err := domain.ValidateColor(in.Color); err != nil {
		return in, err
	}
	for _, l := range labels {
		if l.ID != selfID && strings.EqualFold(l.Name, in.Name) {
			return in, domain.DuplicateError("label", in.Name)
		}
	}
	return in, nil
}

// CreateLabel stores a new label.
func (g *Gateway) CreateLabel(ctx context.Context, in domain.Label) (*domain.Label, error) {
	var created domain.Label
	err := g.mutate(ctx, "create_label", func() error {
		labels, err := g.blobs.labels(ctx)
		if err != nil {
			return err
		}
		if created, err = checkLabel(labels, in, ""); err != nil {
			return err
		}
		created.ID = uuid.New().String()
		labels = append(labels, created)
		return save(ctx, g.blobs, ports.KeyLabels, labels)
	}, ports.TopicLabels)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateLabel replaces the name and color of a label. Domains keep their
// assignment since they reference the label by id.
func (g *Gateway) UpdateLabel(ctx context.Context, id string, in domain.Label) (*domain.Label, error) {
	var updated domain.Label
	err := g.mutate(ctx, "update_label", func() error {
		labels, err := g.blobs.labels(ctx)
		if err != nil {
			return err
		}
		i := slices.IndexFunc(labels, func(l domain.Label) bool { return l.ID == id })
		if i < 0 {
			return domain.NotFoundError("label", id)
		}
		if updated, err = checkLabel(labels, in, id); err != nil {
			return err
		}
		updated.ID = id
		labels[i] = updated
		return save(ctx, g.blobs, ports.KeyLabels, labels)
	}, ports.TopicLabels)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteLabel removes a label and clears it from every domain, including
// domains that carry it embedded in the seed record.
func (g *Gateway) DeleteLabel(ctx context.Context, id string) error {
	return g.mutate(ctx, "delete_label", func() error {
		labels, err := g.blobs.labels(ctx)
		if err != nil {
			return err
		}
		i := slices.IndexFunc(labels, func(l domain.Label) bool { return l.ID == id })
		if i < 0 {
			return domain.NotFoundError("label", id)
		}
		labels = slices.Delete(labels, i, i+1)

		assignments, err := g.blobs.assignments(ctx)
		if err != nil {
			return err
		}
		_, records, err := g.current(ctx)
		if err != nil {
			return err
		}
		for _, r := range records {
			if EffectiveLabel(r, assignments) == id {
				assignments[r.ID] = ""
			}
		}
		for domainID, labelID := range assignments {
			if labelID == id {
				assignments[domainID] = ""
			}
		}

		// Assignments go first: a failed second write leaves an unused label,
		// never an assignment to a missing one.
		if err := save(ctx, g.blobs, ports.KeyLabelAssignments, assignments); err != nil {
			return err
		}
		return save(ctx, g.blobs, ports.KeyLabels, labels)
	}, ports.TopicLabels, ports.TopicDomains)
}
