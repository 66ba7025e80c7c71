package model

import (
	"fmt"
	"strings"
)

// DanglingError reports analyzed content whose email is not in the
// email collection.
type DanglingError struct {
	ContentIDs []string
}

func (e *DanglingError) Error() string {
	return fmt.Sprintf("analyzed content references unknown emails: %s",
		strings.Join(e.ContentIDs, ", "))
}

// CheckReferences verifies that every content record references an email
// in emails. It returns a *DanglingError naming every offending record.
func CheckReferences(emails []Email, contents []AnalyzedContent) error {
	known := make(map[string]bool, len(emails))
	for _, e := range emails {
		known[e.ID] = true
	}
	return CheckReferencesFunc(contents, func(id string) bool { return known[id] })
}

// CheckReferencesFunc is CheckReferences with email existence decided by
// exists. An empty email ID never exists.
func CheckReferencesFunc(contents []AnalyzedContent, exists func(emailID string) bool) error {
	var dangling []string
	for _, c := range contents {
		if c.EmailID == "" || !exists(c.EmailID) {
			dangling = append(dangling, c.ID)
		}
	}
	if len(dangling) > 0 {
		return &DanglingError{ContentIDs: dangling}
	}
	return nil
}

// DuplicateNameError reports a category name used more than once.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("category name %q is already in use", e.Name)
}

// CheckUniqueNames verifies category names are unique within the set.
func CheckUniqueNames(categories []Category) error {
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		if seen[c.Name] {
			return &DuplicateNameError{Name: c.Name}
		}
		seen[c.Name] = true
	}
	return nil
}

// NameTaken reports whether name is used by a category other than exceptID.
func NameTaken(categories []Category, name, exceptID string) bool {
	for _, c := range categories {
		if c.Name == name && c.ID != exceptID {
			return true
		}
	}
	return false
}
