package ports

import (
	"context"
	"io"

	"github.com/poyrazK/domainfolio/internal/core/domain"
)

// Storage keys shared with the dashboard.
const (
	KeyEditedDomains    = "editedDomains"
	KeyDeletedDomainIDs = "deletedDomainIds"
	KeyLabels           = "domainLabels"
	KeyLabelAssignments = "domainLabelAssignments"
	KeyFolders          = "domainFolders"
	KeyUsers            = "appUsers"
	KeyHiddenDomainIDs  = "hiddenDomainIds"
	KeySearchHistory    = "searchHistory"
)

// Change notification topics.
const (
	TopicDomains = "domains-updated"
	TopicFolders = "folders-updated"
	TopicUsers   = "users-updated"
	TopicLabels  = "labels-updated"
	TopicSearch  = "search-history-updated"
)

// TopicForKey maps a storage key to the topic consumers listen on.
func TopicForKey(key string) string {
	switch key {
	case KeyFolders:
		return TopicFolders
	case KeyUsers:
		return TopicUsers
	case KeyLabels:
		return TopicLabels
	case KeySearchHistory:
		return TopicSearch
	default:
		return TopicDomains
	}
}

// ChangeEvent announces that state behind Topic changed.
type ChangeEvent struct {
	Topic string
	Key   string
}

// KVStore is the process-wide string-keyed store holding all mutable state.
// Values are JSON documents.
type KVStore interface {
	// Get returns the stored value. found is false when the key is unset.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	// Notify broadcasts a change on topic to every subscriber.
	Notify(ctx context.Context, topic string) error
	// Subscribe delivers change events until ctx is cancelled.
	Subscribe(ctx context.Context) (<-chan ChangeEvent, error)
	Ping(ctx context.Context) error
}

// SeedSource provides the read-only baseline of domain records.
type SeedSource interface {
	Domains(ctx context.Context) ([]domain.DomainRecord, error)
}

// DomainQuery is the read side used by the API and CLI.
type DomainQuery interface {
	Domains(ctx context.Context) ([]domain.DomainRecord, error)
	ListDomains(ctx context.Context, pred domain.Predicate) ([]domain.DomainRecord, error)
	GetDomain(ctx context.Context, id string) (*domain.DomainRecord, error)
	Recent(ctx context.Context, limit int) ([]domain.DomainRecord, error)
	Duplicates(ctx context.Context) ([]domain.DuplicateGroup, error)
	SelectIDs(ctx context.Context, pred domain.Predicate, ids []string) ([]string, error)
	ExportCSV(ctx context.Context, w io.Writer, pred domain.Predicate, ids []string) (string, error)
	Folders(ctx context.Context) ([]domain.Folder, error)
	GetFolder(ctx context.Context, id string) (*domain.Folder, []domain.DomainRecord, error)
	Labels(ctx context.Context) ([]domain.Label, error)
	Users(ctx context.Context, includeDeleted bool) ([]domain.AppUser, error)
	GetUser(ctx context.Context, id string) (*domain.AppUser, error)
	SearchHistory(ctx context.Context) ([]string, error)
	HealthCheck(ctx context.Context) map[string]error
}

// DomainGateway is the only write path into the store.
type DomainGateway interface {
	ApplyUpdate(ctx context.Context, id string, patch domain.DomainPatch) error
	BulkUpdate(ctx context.Context, ids []string, patch domain.DomainPatch) error
	CreateDomain(ctx context.Context, patch domain.DomainPatch) (*domain.DomainRecord, error)
	DeleteDomains(ctx context.Context, ids []string) error
	HideDomains(ctx context.Context, ids []string) error
	UnhideDomains(ctx context.Context, ids []string) error
	AssignLabel(ctx context.Context, domainID, labelID string) error
	CommitBulkEdit(ctx context.Context, names map[string]string) error
	RecordSearch(ctx context.Context, text string) error

	CreateFolder(ctx context.Context, in domain.Folder) (*domain.Folder, error)
	UpdateFolder(ctx context.Context, id string, in domain.FolderPatch) (*domain.Folder, error)
	DeleteFolder(ctx context.Context, id string) error
	AddDomainsToFolder(ctx context.Context, folderID string, ids []string) (int, error)
	RemoveDomainFromFolder(ctx context.Context, folderID, domainID string) error
	MoveDomains(ctx context.Context, ids []string, folderID string) (domain.MoveResult, error)

	InviteUser(ctx context.Context, in domain.AppUser) (*domain.AppUser, error)
	UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.AppUser, error)
	ActivateUser(ctx context.Context, id string) error
	SuspendUser(ctx context.Context, id string) error
	DeleteUser(ctx context.Context, id string) error

	CreateLabel(ctx context.Context, in domain.Label) (*domain.Label, error)
	UpdateLabel(ctx context.Context, id string, in domain.Label) (*domain.Label, error)
	DeleteLabel(ctx context.Context, id string) error
}
