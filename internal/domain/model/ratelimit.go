package model

import "time"

// RateLimit is a snapshot of one GitHub API rate limit bucket.
type RateLimit struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimits groups the buckets the service consumes.
type RateLimits struct {
	Core    RateLimit
	GraphQL RateLimit
}
