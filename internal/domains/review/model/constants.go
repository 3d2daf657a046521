package model

// Entity is the query cache name for review reads.
const Entity = "reviews"

const (
	MinRating        = 1
	MaxRating        = 5
	MaxContentLength = 2000
)
