package domain

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

var (
	validNameChars = regexp.MustCompile(`^[a-z0-9.-]+$`)
	validTLD       = regexp.MustCompile(`^[a-z]{2,63}$`)
	whitespace     = regexp.MustCompile(`\s`)
)

// NormalizeDomainName strips a leading scheme, a leading "www." and a
// trailing slash, then lower-cases the result. The steps repeat until the
// name stops changing so normalizing twice is a no-op.
func NormalizeDomainName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	for {
		prev := n
		n = strings.TrimPrefix(n, "https://")
		n = strings.TrimPrefix(n, "http://")
		n = strings.TrimPrefix(n, "www.")
		n = strings.TrimSuffix(n, "/")
		if n == prev {
			return n
		}
	}
}

// ValidateDomainName normalizes name and checks it is a plausible hostname.
// It returns the normalized name on success.
func ValidateDomainName(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", NewValidationError("name", "domain name cannot be empty")
	}
	if whitespace.MatchString(strings.TrimSpace(name)) {
		return "", NewValidationError("name", "domain name must not contain spaces")
	}

	n := NormalizeDomainName(name)
	if n == "" {
		return "", NewValidationError("name", "domain name cannot be empty")
	}
	if len(n) > 253 {
		return "", NewValidationError("name", "domain name exceeds 253 characters")
	}
	if !validNameChars.MatchString(n) {
		return "", NewValidationError("name", fmt.Sprintf("domain name '%s' contains invalid characters", n))
	}
	if !strings.Contains(n, ".") {
		return "", NewValidationError("name", "domain name must contain a dot")
	}
	first, last := n[0], n[len(n)-1]
	if first == '-' || first == '.' || last == '-' || last == '.' {
		return "", NewValidationError("name", "domain name must not start or end with a hyphen or dot")
	}

	labels := strings.Split(n, ".")
	for _, label := range labels {
		if label == "" {
			return "", NewValidationError("name", "domain name contains empty label")
		}
		if len(label) > 63 {
			return "", NewValidationError("name", fmt.Sprintf("label '%s' exceeds 63 characters", label))
		}
		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return "", NewValidationError("name", fmt.Sprintf("label '%s' must not start or end with a hyphen", label))
		}
	}
	if !validTLD.MatchString(labels[len(labels)-1]) {
		return "", NewValidationError("name", "top-level domain must be alphabetic")
	}
	return n, nil
}

// ValidateEmail checks that email is a bare address.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return NewValidationError("email", "email cannot be empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return NewValidationError("email", fmt.Sprintf("invalid email '%s'", email))
	}
	return nil
}

var validColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateColor accepts empty strings and #rgb / #rrggbb hex colors.
func ValidateColor(color string) error {
	if color == "" || validColor.MatchString(color) {
		return nil
	}
	return NewValidationError("color", fmt.Sprintf("invalid color '%s'", color))
}

// DuplicateGroup is a set of domains sharing a normalized name.
type DuplicateGroup struct {
	Name string   `json:"name"`
	IDs  []string `json:"ids"`
}

// FindDuplicates groups records by case-insensitive normalized name and
// returns the groups with more than one member, in first-seen order.
func FindDuplicates(records []DomainRecord) []DuplicateGroup {
	index := make(map[string]int)
	var groups []DuplicateGroup
	for _, r := range records {
		key := NormalizeDomainName(r.Name)
		if key == "" {
			continue
		}
		if i, ok := index[key]; ok {
			groups[i].IDs = append(groups[i].IDs, r.ID)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, DuplicateGroup{Name: key, IDs: []string{r.ID}})
	}

	out := groups[:0]
	for _, g := range groups {
		if len(g.IDs) > 1 {
			out = append(out, g)
		}
	}
	return out
}
