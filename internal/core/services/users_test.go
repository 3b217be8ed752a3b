package services

import (
	"context"
	"testing"

	"github.com/poyrazK/domainfolio/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateway_InviteUser(t *testing.T) {
	tests := []struct {
		name  string
		in    domain.AppUser
		isErr error
		field string
	}{
		{"short username", domain.AppUser{Username: "ab", Email: "ab@example.com"}, domain.ErrValidation, "username"},
		{"bad email", domain.AppUser{Username: "boris", Email: "Boris <boris@example.com>"}, domain.ErrValidation, "email"},
		{"empty email", domain.AppUser{Username: "boris"}, domain.ErrValidation, "email"},
		{"unknown role", domain.AppUser{Username: "boris", Email: "boris@example.com", Role: "root"}, domain.ErrValidation, "role"},
		{"taken username", domain.AppUser{Username: "ANNA", Email: "other@example.com"}, domain.ErrDuplicate, ""},
		{"taken email", domain.AppUser{Username: "boris", Email: "Anna@Example.com"}, domain.ErrDuplicate, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			_, err := f.gateway.InviteUser(ctx, domain.AppUser{Username: "anna", Email: "anna@example.com"})
			require.NoError(t, err)

			_, err = f.gateway.InviteUser(ctx, tt.in)
			require.ErrorIs(t, err, tt.isErr)
			if tt.field != "" {
				var verr *domain.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.field, verr.Field)
			}

			users, err := f.portfolio.Users(ctx, true)
			require.NoError(t, err)
			assert.Len(t, users, 1)
		})
	}
}

func TestGateway_UserLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.gateway.InviteUser(ctx, domain.AppUser{Username: "anna", Email: "anna@example.com"})
	require.NoError(t, err)
	assert.Equal(t, domain.UserPending, user.Status)
	assert.Equal(t, domain.RoleViewer, user.Role)
	assert.Equal(t, []string{}, user.Scope.Projects)

	require.NoError(t, f.gateway.ActivateUser(ctx, user.ID))
	require.NoError(t, f.gateway.SuspendUser(ctx, user.ID))
	got, err := f.portfolio.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UserSuspended, got.Status)

	require.NoError(t, f.gateway.DeleteUser(ctx, user.ID))

	_, err = f.portfolio.GetUser(ctx, user.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	live, err := f.portfolio.Users(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, live)
	all, err := f.portfolio.Users(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, domain.UserDeleted, all[0].Status)

	assert.ErrorIs(t, f.gateway.ActivateUser(ctx, user.ID), domain.ErrNotFound)

	// A deleted user's identity can be reused.
	_, err = f.gateway.InviteUser(ctx, domain.AppUser{Username: "anna", Email: "anna@example.com"})
	assert.NoError(t, err)
}

func TestGateway_UpdateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	anna, err := f.gateway.InviteUser(ctx, domain.AppUser{Username: "anna", Email: "anna@example.com"})
	require.NoError(t, err)
	_, err = f.gateway.InviteUser(ctx, domain.AppUser{Username: "boris", Email: "boris@example.com"})
	require.NoError(t, err)

	editor := domain.RoleEditor
	updated, err := f.gateway.UpdateUser(ctx, anna.ID, domain.UserPatch{
		FullName: strPtr(" Anna K "),
		Role:     &editor,
		Scope:    &domain.UserScope{Projects: []string{"Retail"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Anna K", updated.FullName)
	assert.Equal(t, domain.RoleEditor, updated.Role)
	assert.Equal(t, []string{"Retail"}, updated.Scope.Projects)
	assert.Equal(t, []string{}, updated.Scope.Departments)

	_, err = f.gateway.UpdateUser(ctx, anna.ID, domain.UserPatch{Email: strPtr("boris@example.com")})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	// Keeping one's own identity is not a conflict.
	_, err = f.gateway.UpdateUser(ctx, anna.ID, domain.UserPatch{Username: strPtr("anna")})
	assert.NoError(t, err)

	_, err = f.gateway.UpdateUser(ctx, "missing", domain.UserPatch{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
