package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/poyrazK/domainfolio/internal/core/domain"
	"github.com/poyrazK/domainfolio/internal/core/ports"
)

var validUsername = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,32}$`)

func findUser(users []domain.AppUser, id string) (int, error) {
	for i := range users {
		if users[i].ID == id && users[i].Status != domain.UserDeleted {
			return i, nil
		}
	}
	return -1, domain.NotFoundError("user", id)
}

// checkUserIdentity validates username and email and rejects values used by
// another live user.
func checkUserIdentity(users []domain.AppUser, username, email, selfID string) error {
	if !validUsername.MatchString(username) {
		return domain.NewValidationError("username", "username must be 3-32 letters, digits, dots, dashes or underscores")
	}
	if err := domain.ValidateEmail(email); err != nil {
		return err
	}
	for _, u := range users {
		if u.ID == selfID || u.Status == domain.UserDeleted {
			continue
		}
		if strings.EqualFold(u.Username, username) {
			return domain.DuplicateError("username", username)
		}
		if strings.EqualFold(u.Email, email) {
			return domain.DuplicateError("email", email)
		}
	}
	return nil
}

// InviteUser creates a pending user.
func (g *Gateway) InviteUser(ctx context.Context, in domain.AppUser) (*domain.AppUser, error) {
	var created domain.AppUser
	err := g.mutate(ctx, "invite_user", func() error {
		users, err := g.blobs.users(ctx)
		if err != nil {
			return err
		}
		in.Username = strings.TrimSpace(in.Username)
		in.Email = strings.TrimSpace(in.Email)
		if err := checkUserIdentity(users, in.Username, in.Email, ""); err != nil {
			return err
		}
		if in.Role == "" {
			in.Role = domain.RoleViewer
		}
		if !in.Role.Valid() {
			return domain.NewValidationError("role", "unknown role "+string(in.Role))
		}

		stamp := g.stamp()
		created = domain.AppUser{
			ID:               uuid.New().String(),
			Username:         in.Username,
			Email:            in.Email,
			FullName:         strings.TrimSpace(in.FullName),
			Role:             in.Role,
			Scope:            in.Scope,
			Status:           domain.UserPending,
			PrivateFolderIDs: in.PrivateFolderIDs,
			CreatedAt:        stamp,
			UpdatedAt:        stamp,
		}
		created.Normalize()
		users = append(users, created)
		return save(ctx, g.blobs, ports.KeyUsers, users)
	}, ports.TopicUsers)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateUser applies partial edits to a live user.
func (g *Gateway) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.AppUser, error) {
	var updated domain.AppUser
	err := g.mutate(ctx, "update_user", func() error {
		users, err := g.blobs.users(ctx)
		if err != nil {
			return err
		}
		i, err := findUser(users, id)
		if err != nil {
			return err
		}
		u := users[i]
		if patch.Username != nil {
			u.Username = strings.TrimSpace(*patch.Username)
		}
		if patch.Email != nil {
			u.Email = strings.TrimSpace(*patch.Email)
		}
		if patch.FullName != nil {
			u.FullName = strings.TrimSpace(*patch.FullName)
		}
		if patch.Role != nil {
			if !patch.Role.Valid() {
				return domain.NewValidationError("role", "unknown role "+string(*patch.Role))
			}
			u.Role = *patch.Role
		}
		if patch.Scope != nil {
			u.Scope = *patch.Scope
		}
		if patch.PrivateFolderIDs != nil {
			u.PrivateFolderIDs = patch.PrivateFolderIDs
		}
		if err := checkUserIdentity(users, u.Username, u.Email, id); err != nil {
			return err
		}
		u.UpdatedAt = g.stamp()
		u.Normalize()
		users[i] = u
		updated = u
		return save(ctx, g.blobs, ports.KeyUsers, users)
	}, ports.TopicUsers)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (g *Gateway) setUserStatus(ctx context.Context, op, id string, status domain.UserStatus) error {
	return g.mutate(ctx, op, func() error {
		users, err := g.blobs.users(ctx)
		if err != nil {
			return err
		}
		i, err := findUser(users, id)
		if err != nil {
			return err
		}
		if users[i].Status == status {
			return errNoChange
		}
		users[i].Status = status
		users[i].UpdatedAt = g.stamp()
		return save(ctx, g.blobs, ports.KeyUsers, users)
	}, ports.TopicUsers)
}

// ActivateUser marks a pending or suspended user active.
func (g *Gateway) ActivateUser(ctx context.Context, id string) error {
	return g.setUserStatus(ctx, "activate_user", id, domain.UserActive)
}

// SuspendUser blocks a user without removing them.
func (g *Gateway) SuspendUser(ctx context.Context, id string) error {
	return g.setUserStatus(ctx, "suspend_user", id, domain.UserSuspended)
}

// DeleteUser soft-deletes a user. The record stays in storage with status
// deleted and disappears from every listing.
func (g *Gateway) DeleteUser(ctx context.Context, id string) error {
	return g.setUserStatus(ctx, "delete_user", id, domain.UserDeleted)
}
