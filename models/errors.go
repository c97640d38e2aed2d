package models

import "errors"

var (
	ErrInvalidCategoryName  = errors.New("invalid category name")
	ErrInvalidCategorySlug  = errors.New("invalid category slug")
	ErrInvalidCategoryLevel = errors.New("invalid category level")

	ErrValidationFailed       = errors.New("validation failed")
	ErrDuplicateSlug          = errors.New("a category with this slug already exists")
	ErrParentNotFound         = errors.New("parent category not found")
	ErrReassignTargetNotFound = errors.New("reassign target category not found")
	ErrSelfParent             = errors.New("a category cannot be its own parent")
	ErrCircularReference      = errors.New("cannot move a category under one of its own descendants")
	ErrHasChildren            = errors.New("category has child categories")
	ErrOrphanWouldResult      = errors.New("deleting these categories would orphan their children")

	ErrDatabaseCredentialNotConfigured = errors.New("database credentials not configured")
	ErrInvalidSymmetricKey             = errors.New("invalid symmetric key size")

	ErrRecordNotFound = errors.New("record not found")
)
