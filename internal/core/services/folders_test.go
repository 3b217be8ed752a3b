package services

import (
	"context"
	"errors"
	"testing"

	"github.com/poyrazK/domainfolio/internal/core/domain"
	"github.com/poyrazK/domainfolio/internal/core/ports"
	"github.com/poyrazK/domainfolio/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGateway_CreateFolder(t *testing.T) {
	tests := []struct {
		name  string
		in    domain.Folder
		isErr error
	}{
		{"empty name", domain.Folder{Name: "  "}, domain.ErrValidation},
		{"bad color", domain.Folder{Name: "X", Color: "red"}, domain.ErrValidation},
		{"bad access type", domain.Folder{Name: "X", AccessType: "secret"}, domain.ErrValidation},
		{"unknown domain", domain.Folder{Name: "X", DomainIDs: []string{"d9"}}, domain.ErrNotFound},
		{"duplicate name", domain.Folder{Name: "main"}, domain.ErrDuplicate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.gateway.CreateFolder(context.Background(), domain.Folder{Name: "Main"})
			require.NoError(t, err)

			_, err = f.gateway.CreateFolder(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.isErr)

			folders, err := f.portfolio.Folders(context.Background())
			require.NoError(t, err)
			assert.Len(t, folders, 1)
		})
	}
}

func TestGateway_CreateFolderDefaults(t *testing.T) {
	f := newFixture(t)

	folder, err := f.gateway.CreateFolder(context.Background(), domain.Folder{Name: " Main ", DomainIDs: []string{"d2", "d2", "d1"}})
	require.NoError(t, err)

	assert.NotEmpty(t, folder.ID)
	assert.Equal(t, "Main", folder.Name)
	assert.Equal(t, domain.AccessPrivate, folder.AccessType)
	assert.Equal(t, []string{"d2", "d1"}, folder.DomainIDs)
	assert.Equal(t, "2025-06-01T12:00:00Z", folder.CreatedAt)
}

func TestGateway_UpdateFolder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	main, err := f.gateway.CreateFolder(ctx, domain.Folder{Name: "Main"})
	require.NoError(t, err)
	_, err = f.gateway.CreateFolder(ctx, domain.Folder{Name: "Other"})
	require.NoError(t, err)

	shared := domain.AccessShared
	updated, err := f.gateway.UpdateFolder(ctx, main.ID, domain.FolderPatch{Name: strPtr("Renamed"), Color: strPtr("#0f0"), AccessType: &shared})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "#0f0", updated.Color)
	assert.Equal(t, domain.AccessShared, updated.AccessType)

	_, err = f.gateway.UpdateFolder(ctx, main.ID, domain.FolderPatch{Name: strPtr("OTHER")})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = f.gateway.UpdateFolder(ctx, "missing", domain.FolderPatch{Name: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGateway_MoveDomains(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	folder, err := f.gateway.CreateFolder(ctx, domain.Folder{Name: "Main", DomainIDs: []string{"d1"}})
	require.NoError(t, err)

	res, err := f.gateway.MoveDomains(ctx, []string{"d1", "d2", "d3", "d2"}, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MoveResult{FolderID: folder.ID, Moved: 2, AlreadyPresent: 1}, res)

	// Repeating the move changes nothing.
	res, err = f.gateway.MoveDomains(ctx, []string{"d1", "d2", "d3"}, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MoveResult{FolderID: folder.ID, Moved: 0, AlreadyPresent: 3}, res)

	got, _, err := f.portfolio.GetFolder(ctx, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"d1", "d2", "d3"}, got.DomainIDs)

	_, err = f.gateway.MoveDomains(ctx, []string{"d1"}, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.gateway.MoveDomains(ctx, []string{"d9"}, folder.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGateway_AddAndRemoveFromFolder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	folder, err := f.gateway.CreateFolder(ctx, domain.Folder{Name: "Main"})
	require.NoError(t, err)

	added, err := f.gateway.AddDomainsToFolder(ctx, folder.ID, []string{"d1", "d3"})
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	require.NoError(t, f.gateway.RemoveDomainFromFolder(ctx, folder.ID, "d1"))
	require.NoError(t, f.gateway.RemoveDomainFromFolder(ctx, folder.ID, "d1"))

	_, members, err := f.portfolio.GetFolder(ctx, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"d3"}, ids(members))

	noFolder, err := f.portfolio.ListDomains(ctx, domain.Predicate{FolderIDs: []string{domain.NoFolderID}})
	require.NoError(t, err)
	assert.Equal(t, []string{"d1", "d2"}, ids(noFolder))
}

func TestGateway_DeleteFolder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	folder, err := f.gateway.CreateFolder(ctx, domain.Folder{Name: "Main", DomainIDs: []string{"d1"}})
	require.NoError(t, err)
	user, err := f.gateway.InviteUser(ctx, domain.AppUser{Username: "anna", Email: "anna@example.com", PrivateFolderIDs: []string{folder.ID, "other"}})
	require.NoError(t, err)

	events, err := f.store.Subscribe(t.Context())
	require.NoError(t, err)
	require.NoError(t, f.gateway.DeleteFolder(ctx, folder.ID))
	assert.Equal(t, ports.TopicFolders, (<-events).Topic)
	assert.Equal(t, ports.TopicUsers, (<-events).Topic)

	folders, err := f.portfolio.Folders(ctx)
	require.NoError(t, err)
	assert.Empty(t, folders)

	got, err := f.portfolio.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"other"}, got.PrivateFolderIDs)

	// Domains survive their folder.
	_, err = f.portfolio.GetDomain(ctx, "d1")
	assert.NoError(t, err)

	assert.ErrorIs(t, f.gateway.DeleteFolder(ctx, folder.ID), domain.ErrNotFound)
}

func TestGateway_DeleteFolderWritesUsersFirst(t *testing.T) {
	store := new(testutil.MockStore)
	store.On("Get", ports.KeyFolders).Return([]byte(`[{"id":"f1","name":"Main","color":"","accessType":"private","domainIds":["d1"]}]`), true, nil)
	store.On("Get", ports.KeyUsers).Return([]byte(`[{"id":"u1","username":"anna","email":"anna@example.com","privateFolderIds":["f1"]}]`), true, nil)
	store.On("Set", ports.KeyUsers, mock.Anything).Return(errors.New("disk full"))

	g := NewGateway(&testutil.StaticSeed{Records: fixtureRecords()}, store, nil, nil)
	err := g.DeleteFolder(context.Background(), "f1")

	assert.ErrorContains(t, err, "disk full")
	store.AssertNotCalled(t, "Set", ports.KeyFolders, mock.Anything)
	store.AssertNotCalled(t, "Notify", mock.Anything)
}
