package model

import "errors"

var (
	ErrBookNotFound     = errors.New("book not found")
	ErrNothingToUpdate  = errors.New("no fields to update")
	ErrCategoryNotFound = errors.New("category not found")
)
