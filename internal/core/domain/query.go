package domain

// NoFolderID is the sentinel folder option matching domains in no folder.
const NoFolderID = "__none__"

// Predicate narrows a domain list. Every set field must match.
type Predicate struct {
	Text       string       `json:"text,omitempty"`
	Types      []DomainType `json:"types,omitempty"`
	Statuses   []Status     `json:"statuses,omitempty"`
	Projects   []string     `json:"projects,omitempty"`
	Registrars []string     `json:"registrars,omitempty"`
	LabelID    string       `json:"labelId,omitempty"`
	FolderIDs  []string     `json:"folderIds,omitempty"`
	NoFolder   bool         `json:"noFolder,omitempty"`
	ShowHidden bool         `json:"showHidden,omitempty"`
	Scope      *UserScope   `json:"scope,omitempty"`
}

// MoveResult reports how many domains a move added and how many were
// already in the target folder.
type MoveResult struct {
	FolderID       string `json:"folderId"`
	Moved          int    `json:"moved"`
	AlreadyPresent int    `json:"alreadyPresent"`
}

// FolderPatch carries partial folder edits.
type FolderPatch struct {
	Name       *string     `json:"name,omitempty"`
	Color      *string     `json:"color,omitempty"`
	AccessType *AccessType `json:"accessType,omitempty"`
}

// Valid reports whether a is a known access type.
func (a AccessType) Valid() bool {
	switch a {
	case AccessPrivate, AccessShared, AccessPublic:
		return true
	}
	return false
}

// Valid reports whether t is a known domain type.
func (t DomainType) Valid() bool {
	switch t {
	case TypeUnknown, TypeSite, TypeLanding, TypeSEO, TypeMirror,
		TypeRedirect, TypeTechnical, TypeProduct, TypePromo, TypeReserve:
		return true
	}
	return false
}

// Derived reports whether s is only ever computed from the renewal date.
func (s Status) Derived() bool {
	return s == StatusExpiring || s == StatusExpired
}

// Storable reports whether s may be persisted as a domain's raw status.
func (s Status) Storable() bool {
	switch s {
	case StatusActual, StatusSpare, StatusNotActual, StatusNotConfigured,
		StatusBlocked, StatusPending, StatusUnknown:
		return true
	}
	return false
}
