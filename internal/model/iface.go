package model

import "context"

// Backend is the contract of the dashboard's REST backend.
type Backend interface {
	AuthStatus(ctx context.Context) (AuthStatus, error)
	DefaultQuery(ctx context.Context) (string, error)
	Search(ctx context.Context, query string, page, perPage int) (SearchResult, error)
	PRJobs(ctx context.Context, owner, repo string, number int) (PRJobs, error)
	Retest(ctx context.Context, req RetestRequest) error
}
