package domain

import "slices"

type Role string

const (
	RoleSuperAdmin Role = "superadmin" // Everything, including user management of admins
	RoleAdmin      Role = "admin"      // Full CRUD on domains, folders, users
	RoleManager    Role = "manager"    // Domains and folders within scope
	RoleEditor     Role = "editor"     // Edit domains within scope
	RoleViewer     Role = "viewer"     // Read-only
)

var roleRank = map[Role]int{
	RoleViewer:     1,
	RoleEditor:     2,
	RoleManager:    3,
	RoleAdmin:      4,
	RoleSuperAdmin: 5,
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

type UserStatus string

const (
	UserPending   UserStatus = "pending"
	UserActive    UserStatus = "active"
	UserSuspended UserStatus = "suspended"
	UserDeleted   UserStatus = "deleted"
)

// UserScope restricts a user to projects and departments. Empty lists mean
// no restriction.
type UserScope struct {
	Projects    []string `json:"projects"`
	Departments []string `json:"departments"`
}

// Allows reports whether rec falls within the scope.
func (s UserScope) Allows(rec DomainRecord) bool {
	if len(s.Projects) > 0 && !slices.Contains(s.Projects, rec.Project) {
		return false
	}
	if len(s.Departments) > 0 && !slices.Contains(s.Departments, rec.Department) {
		return false
	}
	return true
}

// AppUser is a dashboard account. Users are never physically removed;
// deletion sets Status to UserDeleted.
type AppUser struct {
	ID               string     `json:"id"`
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	FullName         string     `json:"fullName,omitempty"`
	Role             Role       `json:"role"`
	Scope            UserScope  `json:"scope"`
	Status           UserStatus `json:"status"`
	PrivateFolderIDs []string   `json:"privateFolderIds"`
	CreatedAt        string     `json:"createdAt"`
	UpdatedAt        string     `json:"updatedAt"`
}

// Normalize fills defaults for users read from storage.
func (u *AppUser) Normalize() {
	if u.Role == "" {
		u.Role = RoleViewer
	}
	if u.Status == "" {
		u.Status = UserActive
	}
	if u.Scope.Projects == nil {
		u.Scope.Projects = []string{}
	}
	if u.Scope.Departments == nil {
		u.Scope.Departments = []string{}
	}
	if u.PrivateFolderIDs == nil {
		u.PrivateFolderIDs = []string{}
	}
}

// UserPatch carries partial user edits.
type UserPatch struct {
	Username         *string    `json:"username,omitempty"`
	Email            *string    `json:"email,omitempty"`
	FullName         *string    `json:"fullName,omitempty"`
	Role             *Role      `json:"role,omitempty"`
	Scope            *UserScope `json:"scope,omitempty"`
	PrivateFolderIDs []string   `json:"privateFolderIds,omitempty"`
}
