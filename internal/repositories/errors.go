package repositories

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrNotFound is returned when the addressed document or row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when a write would break email uniqueness.
	ErrDuplicateEmail = errors.New("email already registered")
)

// literalPattern turns a user query into a regex matching it as a plain substring.
func literalPattern(query string) string {
	return regexp.QuoteMeta(query)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern turns a user query into an ILIKE pattern matching it as a plain substring.
func likePattern(query string) string {
	return "%" + likeEscaper.Replace(query) + "%"
}
