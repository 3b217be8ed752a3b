// Package domain contains the core business entities and rules for domainfolio.
package domain

import "strings"

// DomainType classifies what a domain is used for.
type DomainType string

const (
	TypeUnknown   DomainType = "unknown"
	TypeSite      DomainType = "site"
	TypeLanding   DomainType = "landing"
	TypeSEO       DomainType = "seo"
	TypeMirror    DomainType = "mirror"
	TypeRedirect  DomainType = "redirect"
	TypeTechnical DomainType = "technical"
	TypeProduct   DomainType = "product"
	TypePromo     DomainType = "promo"
	TypeReserve   DomainType = "reserve"
)

// Status is the lifecycle state of a domain.
type Status string

const (
	StatusActual        Status = "actual"
	StatusSpare         Status = "spare"
	StatusNotActual     Status = "not_actual"
	StatusNotConfigured Status = "not_configured"
	StatusBlocked       Status = "blocked"
	StatusPending       Status = "pending"
	StatusExpiring      Status = "expiring" // derived: renewal within 30 days
	StatusExpired       Status = "expired"  // derived: renewal date reached
	StatusUnknown       Status = "unknown"
)

// Defaults applied to domains that have no seed baseline.
const (
	DefaultProject      = "Не известно"
	DefaultDepartment   = "Не известно"
	DefaultOwner        = "Неизвестен"
	DefaultSSLStatus    = "none"
	DefaultUpdateMethod = "manual"
	DefaultCurrency     = "USD"
)

// NewIDPrefix marks domains created through the overlay rather than the seed.
const NewIDPrefix = "new-"

// DomainRecord represents one domain name under management.
type DomainRecord struct {
	ID           string     `json:"id" yaml:"id"`
	Name         string     `json:"name" yaml:"name"` // bare hostname, e.g. example.com
	Type         DomainType `json:"type" yaml:"type"`
	Status       Status     `json:"status" yaml:"status"`
	StoredStatus Status     `json:"storedStatus,omitempty" yaml:"-"`
	Project      string     `json:"project" yaml:"project"`
	Department   string     `json:"department" yaml:"department"`
	Owner        string     `json:"owner" yaml:"owner"`
	Registrar    string     `json:"registrar" yaml:"registrar"`
	Description  string     `json:"description,omitempty" yaml:"description"`

	RegistrationDate string `json:"registrationDate" yaml:"registrationDate"`
	ExpirationDate   string `json:"expirationDate" yaml:"expirationDate"`
	RenewalDate      string `json:"renewalDate,omitempty" yaml:"renewalDate"`
	CreatedAt        string `json:"createdAt" yaml:"createdAt"`
	UpdatedAt        string `json:"updatedAt" yaml:"updatedAt"`

	Geo        []string `json:"geo" yaml:"geo"`
	BlockedGeo []string `json:"blockedGeo" yaml:"blockedGeo"`
	Tags       []string `json:"tags" yaml:"tags"`
	NSServers  []string `json:"nsServers" yaml:"nsServers"`

	SSLStatus    string `json:"sslStatus" yaml:"sslStatus"`
	UpdateMethod string `json:"updateMethod" yaml:"updateMethod"`
	Currency     string `json:"currency" yaml:"currency"`
	LabelID      string `json:"labelId,omitempty" yaml:"labelId"`

	// Extensions carries department-specific fields (marketing, IT,
	// analytics). Opaque to the core.
	Extensions map[string]any `json:"extensions,omitempty" yaml:"extensions"`
}

// IsSyntheticID reports whether id names a record created through the
// overlay. The bare prefix is not an id.
func IsSyntheticID(id string) bool {
	return len(id) > len(NewIDPrefix) && strings.HasPrefix(id, NewIDPrefix)
}

// ApplyDefaults fills empty enum fields and nil sets so decoded records are
// always fully shaped.
func (d *DomainRecord) ApplyDefaults() {
	if d.Type == "" {
		d.Type = TypeUnknown
	}
	if d.Status == "" {
		d.Status = StatusUnknown
	}
	if d.SSLStatus == "" {
		d.SSLStatus = DefaultSSLStatus
	}
	if d.UpdateMethod == "" {
		d.UpdateMethod = DefaultUpdateMethod
	}
	if d.Currency == "" {
		d.Currency = DefaultCurrency
	}
	if d.Geo == nil {
		d.Geo = []string{}
	}
	if d.BlockedGeo == nil {
		d.BlockedGeo = []string{}
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}
	if d.NSServers == nil {
		d.NSServers = []string{}
	}
}

// DomainPatch is a sparse set of edits for one domain. Nil fields are unset.
type DomainPatch struct {
	Name             *string     `json:"name,omitempty"`
	Type             *DomainType `json:"type,omitempty"`
	Status           *Status     `json:"status,omitempty"`
	Project          *string     `json:"project,omitempty"`
	Department       *string     `json:"department,omitempty"`
	Owner            *string     `json:"owner,omitempty"`
	Registrar        *string     `json:"registrar,omitempty"`
	Description      *string     `json:"description,omitempty"`
	RegistrationDate *string     `json:"registrationDate,omitempty"`
	ExpirationDate   *string     `json:"expirationDate,omitempty"`
	RenewalDate      *string     `json:"renewalDate,omitempty"`
	CreatedAt        *string     `json:"createdAt,omitempty"`
	UpdatedAt        *string     `json:"updatedAt,omitempty"`
	Geo              []string    `json:"geo"`
	BlockedGeo       []string    `json:"blockedGeo"`
	Tags             []string    `json:"tags"`
	NSServers        []string    `json:"nsServers"`
	SSLStatus        *string     `json:"sslStatus,omitempty"`
	UpdateMethod     *string     `json:"updateMethod,omitempty"`
	Currency         *string     `json:"currency,omitempty"`
	LabelID          *string     `json:"labelId,omitempty"`

	Extensions map[string]any `json:"extensions,omitempty"`
}

// Merge layers next on top of p. Set fields in next win; extensions merge
// key by key.
func (p DomainPatch) Merge(next DomainPatch) DomainPatch {
	out := p
	if next.Name != nil {
		out.Name = next.Name
	}
	if next.Type != nil {
		out.Type = next.Type
	}
	if next.Status != nil {
		out.Status = next.Status
	}
	if next.Project != nil {
		out.Project = next.Project
	}
	if next.Department != nil {
		out.Department = next.Department
	}
	if next.Owner != nil {
		out.Owner = next.Owner
	}
	if next.Registrar != nil {
		out.Registrar = next.Registrar
	}
	if next.Description != nil {
		out.Description = next.Description
	}
	if next.RegistrationDate != nil {
		out.RegistrationDate = next.RegistrationDate
	}
	if next.ExpirationDate != nil {
		out.ExpirationDate = next.ExpirationDate
	}
	if next.RenewalDate != nil {
		out.RenewalDate = next.RenewalDate
	}
	if next.CreatedAt != nil {
		out.CreatedAt = next.CreatedAt
	}
	if next.UpdatedAt != nil {
		out.UpdatedAt = next.UpdatedAt
	}
	if next.Geo != nil {
		out.Geo = next.Geo
	}
	if next.BlockedGeo != nil {
		out.BlockedGeo = next.BlockedGeo
	}
	if next.Tags != nil {
		out.Tags = next.Tags
	}
	if next.NSServers != nil {
		out.NSServers = next.NSServers
	}
	if next.SSLStatus != nil {
		out.SSLStatus = next.SSLStatus
	}
	if next.UpdateMethod != nil {
		out.UpdateMethod = next.UpdateMethod
	}
	if next.Currency != nil {
		out.Currency = next.Currency
	}
	if next.LabelID != nil {
		out.LabelID = next.LabelID
	}
	if len(next.Extensions) > 0 {
		ext := make(map[string]any, len(p.Extensions)+len(next.Extensions))
		for k, v := range p.Extensions {
			ext[k] = v
		}
		for k, v := range next.Extensions {
			ext[k] = v
		}
		out.Extensions = ext
	}
	return out
}

// ApplyTo returns a copy of rec with the patch's set fields written over it.
func (p DomainPatch) ApplyTo(rec DomainRecord) DomainRecord {
	out := rec
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Type != nil {
		out.Type = *p.Type
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.Project != nil {
		out.Project = *p.Project
	}
	if p.Department != nil {
		out.Department = *p.Department
	}
	if p.Owner != nil {
		out.Owner = *p.Owner
	}
	if p.Registrar != nil {
		out.Registrar = *p.Registrar
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.RegistrationDate != nil {
		out.RegistrationDate = *p.RegistrationDate
	}
	if p.ExpirationDate != nil {
		out.ExpirationDate = *p.ExpirationDate
	}
	if p.RenewalDate != nil {
		out.RenewalDate = *p.RenewalDate
	}
	if p.CreatedAt != nil {
		out.CreatedAt = *p.CreatedAt
	}
	if p.UpdatedAt != nil {
		out.UpdatedAt = *p.UpdatedAt
	}
	if p.Geo != nil {
		out.Geo = append([]string(nil), p.Geo...)
	}
	if p.BlockedGeo != nil {
		out.BlockedGeo = append([]string(nil), p.BlockedGeo...)
	}
	if p.Tags != nil {
		out.Tags = append([]string(nil), p.Tags...)
	}
	if p.NSServers != nil {
		out.NSServers = append([]string(nil), p.NSServers...)
	}
	if p.SSLStatus != nil {
		out.SSLStatus = *p.SSLStatus
	}
	if p.UpdateMethod != nil {
		out.UpdateMethod = *p.UpdateMethod
	}
	if p.Currency != nil {
		out.Currency = *p.Currency
	}
	if p.LabelID != nil {
		out.LabelID = *p.LabelID
	}
	if len(p.Extensions) > 0 {
		ext := make(map[string]any, len(rec.Extensions)+len(p.Extensions))
		for k, v := range rec.Extensions {
			ext[k] = v
		}
		for k, v := range p.Extensions {
			ext[k] = v
		}
		out.Extensions = ext
	}
	return out
}

// Label is a colored tag that can be assigned to domains.
type Label struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// AccessType controls who can see a folder.
type AccessType string

const (
	AccessPrivate AccessType = "private"
	AccessShared  AccessType = "shared"
	AccessPublic  AccessType = "public"
)

// Folder is a named set of domain ids. A domain may be in many folders.
type Folder struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Color      string     `json:"color"`
	AccessType AccessType `json:"accessType"`
	DomainIDs  []string   `json:"domainIds"`
	CreatedAt  string     `json:"createdAt"`
	UpdatedAt  string     `json:"updatedAt"`
}

// Normalize fills defaults for folders read from storage.
func (f *Folder) Normalize() {
	if f.AccessType == "" {
		f.AccessType = AccessPrivate
	}
	if f.DomainIDs == nil {
		f.DomainIDs = []string{}
	}
}

// Contains reports whether the folder holds domainID.
func (f *Folder) Contains(domainID string) bool {
	for _, id := range f.DomainIDs {
		if id == domainID {
			return true
		}
	}
	return false
}
