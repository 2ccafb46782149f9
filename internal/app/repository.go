package app

import (
	"fmt"
	"regexp"
	"strings"
)

// repositoryPartRe matches characters allowed by github in owner and repository names.
var repositoryPartRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Repository identifies github repository.
type Repository struct {
	Owner string
	Name  string
}

// ParseRepository parses repository in "owner/name" form.
// Returns InvalidRequestError for malformed input.
func ParseRepository(s string) (Repository, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return Repository{}, InvalidRequestError(fmt.Sprintf("repository must be in owner/name form, got %q", s))
	}

	repo := Repository{
		Owner: parts[0],
		Name:  parts[1],
	}
	if err := repo.Validate(); err != nil {
		return Repository{}, err
	}

	return repo, nil
}

// Validate checks that owner and name are non-empty, use only letters, digits, '.', '_' and '-',
// and are not "." or "..".
func (r Repository) Validate() error {
	if err := validateRepositoryPart("owner", r.Owner); err != nil {
		return err
	}
	return validateRepositoryPart("name", r.Name)
}

func validateRepositoryPart(kind, s string) error {
	if s == "" {
		return InvalidRequestError(fmt.Sprintf("repository %s cannot be empty", kind))
	}
	if s == "." || s == ".." || !repositoryPartRe.MatchString(s) {
		return InvalidRequestError(fmt.Sprintf("invalid repository %s %q", kind, s))
	}
	return nil
}

// FullName returns "owner/name".
func (r Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

func (r Repository) String() string {
	return r.FullName()
}
