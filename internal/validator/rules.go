package validator

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// NotBlank returns true if a string is not empty or contains only whitespace.
func NotBlank(value string) bool {
	return strings.TrimSpace(value) != ""
}

// MaxRunes returns true if a string is less than or equal to a maximum number of n
func MaxRunes(value string, n int) bool {
	return utf8.RuneCountInString(value) <= n
}

// In returns true if a value is in a list of values.
func In[T comparable](value T, list ...T) bool {
	for i := range list {
		if value == list[i] {
			return true
		}
	}
	return false
}

// NoDuplicates returns true if all the values in a slice are unique.
func NoDuplicates[T comparable](values []T) bool {
	uniqueValues := make(map[T]struct{}, len(values))
	for _, value := range values {
		uniqueValues[value] = struct{}{}
	}
	return len(values) == len(uniqueValues)
}

// NoNilUUIDs returns true if none of the ids is the zero UUID.
func NoNilUUIDs(ids []uuid.UUID) bool {
	for _, id := range ids {
		if id == uuid.Nil {
			return false
		}
	}
	return true
}

// IsURL returns true if a string is an absolute URL or a root-relative path.
func IsURL(value string) bool {
	if strings.HasPrefix(value, "/") && !strings.HasPrefix(value, "//") {
		return true
	}
	u, err := url.ParseRequestURI(value)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
