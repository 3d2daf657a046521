package model

import "errors"

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrDuplicateSlug    = errors.New("category slug already exists")
	ErrInvalidParent    = errors.New("parent must be an existing top-level category")
)
