package services

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/poyrazK/domainfolio/internal/core/domain"
	"github.com/poyrazK/domainfolio/internal/core/ports"
)

func findFolder(folders []domain.Folder, id string) (int, error) {
	for i := range folders {
		if folders[i].ID == id {
			return i, nil
		}
	}
	return -1, domain.NotFoundError("folder", id)
}

func checkFolderName(folders []domain.Folder, name, selfID string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.NewValidationError("name", "folder name cannot be empty")
	}
	for _, f := range folders {
		if f.ID != selfID && strings.EqualFold(f.Name, name) {
			return "", domain.DuplicateError("folder", name)
		}
	}
	return name, nil
}

// CreateFolder stores a new folder. Initial domain ids must exist.
func (g *Gateway) CreateFolder(ctx context.Context, in domain.Folder) (*domain.Folder, error) {
	var created domain.Folder
	err := g.mutate(ctx, "create_folder", func() error {
		folders, err := g.blobs.folders(ctx)
		if err != nil {
			return err
		}
		name, err := checkFolderName(folders, in.Name, "")
		if err != nil {
			return err
		}
		if err := domain.ValidateColor(in.Color); err != nil {
			return err
		}
		if in.AccessType == "" {
			in.AccessType = domain.AccessPrivate
		}
		if !in.AccessType.Valid() {
			return domain.NewValidationError("accessType", "unknown access type "+string(in.AccessType))
		}

		ids := []string{}
		if len(in.DomainIDs) > 0 {
			_, records, err := g.current(ctx)
			if err != nil {
				return err
			}
			if err := requireIDs(in.DomainIDs, indexByID(records)); err != nil {
				return err
			}
			ids = addIDs(map[string]struct{}{}, ids, in.DomainIDs)
		}

		stamp := g.stamp()
		created = domain.Folder{
			ID:         uuid.New().String(),
			Name:       name,
			Color:      in.Color,
			AccessType: in.AccessType,
			DomainIDs:  ids,
			CreatedAt:  stamp,
			UpdatedAt:  stamp,
		}
		folders = append(folders, created)
		return save(ctx, g.blobs, ports.KeyFolders, folders)
	}, ports.TopicFolders)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateFolder renames, recolors or changes the access type of a folder.
func (g *Gateway) UpdateFolder(ctx context.Context, id string, patch domain.FolderPatch) (*domain.Folder, error) {
	var updated domain.Folder
	err := g.mutate(ctx, "update_folder", func() error {
		folders, err := g.blobs.folders(ctx)
		if err != nil {
			return err
		}
		i, err := findFolder(folders, id)
		if err != nil {
			return err
		}
		f := folders[i]
		if patch.Name != nil {
			if f.Name, err = checkFolderName(folders, *patch.Name, id); err != nil {
				return err
			}
		}
		if patch.Color != nil {
			if err := domain.ValidateColor(*patch.Color); err != nil {
				return err
			}
			f.Color = *patch.Color
		}
		if patch.AccessType != nil {
			if !patch.AccessType.Valid() {
				return domain.NewValidationError("accessType", "unknown access type "+string(*patch.AccessType))
			}
			f.AccessType = *patch.AccessType
		}
		f.UpdatedAt = g.stamp()
		folders[i] = f
		updated = f
		return save(ctx, g.blobs, ports.KeyFolders, folders)
	}, ports.TopicFolders)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteFolder removes a folder and drops it from users' private folders.
// The domains it held are untouched.
func (g *Gateway) DeleteFolder(ctx context.Context, id string) error {
	return g.mutate(ctx, "delete_folder", func() error {
		folders, err := g.blobs.folders(ctx)
		if err != nil {
			return err
		}
		i, err := findFolder(folders, id)
		if err != nil {
			return err
		}
		folders = slices.Delete(folders, i, i+1)

		// Users are updated first so no user is left pointing at a folder
		// that is gone.
		users, err := g.blobs.users(ctx)
		if err != nil {
			return err
		}
		touched := false
		for u := range users {
			if j := slices.Index(users[u].PrivateFolderIDs, id); j >= 0 {
				users[u].PrivateFolderIDs = slices.Delete(users[u].PrivateFolderIDs, j, j+1)
				touched = true
			}
		}
		if touched {
			if err := save(ctx, g.blobs, ports.KeyUsers, users); err != nil {
				return err
			}
		}
		return save(ctx, g.blobs, ports.KeyFolders, folders)
	}, ports.TopicFolders, ports.TopicUsers)
}

// addToFolder unions ids into the folder and reports how many were new.
func (g *Gateway) addToFolder(ctx context.Context, folderID string, ids []string) (domain.MoveResult, error) {
	res := domain.MoveResult{FolderID: folderID}
	folders, err := g.blobs.folders(ctx)
	if err != nil {
		return res, err
	}
	i, err := findFolder(folders, folderID)
	if err != nil {
		return res, err
	}
	_, records, err := g.current(ctx)
	if err != nil {
		return res, err
	}
	if err := requireIDs(ids, indexByID(records)); err != nil {
		return res, err
	}

	batch := addIDs(map[string]struct{}{}, nil, ids)
	present := make(map[string]struct{}, len(folders[i].DomainIDs))
	for _, id := range folders[i].DomainIDs {
		present[id] = struct{}{}
	}
	for _, id := range batch {
		if _, ok := present[id]; ok {
			res.AlreadyPresent++
			continue
		}
		present[id] = struct{}{}
		folders[i].DomainIDs = append(folders[i].DomainIDs, id)
		res.Moved++
	}
	if res.Moved == 0 {
		return res, errNoChange
	}
	folders[i].UpdatedAt = g.stamp()
	return res, save(ctx, g.blobs, ports.KeyFolders, folders)
}

// AddDomainsToFolder adds ids to a folder and returns how many were added.
func (g *Gateway) AddDomainsToFolder(ctx context.Context, folderID string, ids []string) (int, error) {
	var res domain.MoveResult
	err := g.mutate(ctx, "add_to_folder", func() error {
		var err error
		res, err = g.addToFolder(ctx, folderID, ids)
		return err
	}, ports.TopicFolders)
	return res.Moved, err
}

// MoveDomains puts ids into a folder. Ids already there are left alone and
// counted separately, so repeating a move changes nothing and reports the
// whole batch as already present.
func (g *Gateway) MoveDomains(ctx context.Context, ids []string, folderID string) (domain.MoveResult, error) {
	var res domain.MoveResult
	err := g.mutate(ctx, "move_domains", func() error {
		var err error
		res, err = g.addToFolder(ctx, folderID, ids)
		return err
	}, ports.TopicFolders)
	if err != nil {
		return domain.MoveResult{}, err
	}
	return res, nil
}

// RemoveDomainFromFolder drops one domain from a folder. Removing a domain
// that is not in the folder is a no-op.
func (g *Gateway) RemoveDomainFromFolder(ctx context.Context, folderID, domainID string) error {
	return g.mutate(ctx, "remove_from_folder", func() error {
		folders, err := g.blobs.folders(ctx)
		if err != nil {
			return err
		}
		i, err := findFolder(folders, folderID)
		if err != nil {
			return err
		}
		j := slices.Index(folders[i].DomainIDs, domainID)
		if j < 0 {
			return errNoChange
		}
		folders[i].DomainIDs = slices.Delete(folders[i].DomainIDs, j, j+1)
		folders[i].UpdatedAt = g.stamp()
		return save(ctx, g.blobs, ports.KeyFolders, folders)
	}, ports.TopicFolders)
}
