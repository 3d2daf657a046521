package model

import "errors"

var (
	ErrAlreadyInLibrary  = errors.New("book already in library")
	ErrNotInLibrary      = errors.New("book not in library")
	ErrAlreadyBookmarked = errors.New("already bookmarked")
	ErrBookmarkNotFound  = errors.New("bookmark not found")
	ErrBookNotFound      = errors.New("book not found")
	ErrBookUnavailable   = errors.New("book has no downloadable file")
	ErrNegativePage      = errors.New("current page must not be negative")
	ErrInvalidTotalPages = errors.New("total pages must not be negative")
	ErrEmptyBatch        = errors.New("no book ids given")
)
