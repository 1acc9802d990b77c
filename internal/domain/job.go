package domain

import "context"

// Job is a read-only pass-through of the CMS job collection.
type Job struct {
	ID          int64    `json:"id"`
	DocumentID  string   `json:"documentId,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Location    string   `json:"location,omitempty"`
	SalaryMin   *float64 `json:"salaryMin,omitempty"`
	SalaryMax   *float64 `json:"salaryMax,omitempty"`
	CompanyID   *int64   `json:"company,omitempty"`
	Deadline    string   `json:"deadline,omitempty"`
	PublishedAt string   `json:"publishedAt,omitempty"`
}

type JobFilter struct {
	CategoryID *int64
	LocationID *int64
	CompanyID  *int64
	Search     string
	Page       int
	PageSize   int
}

type JobRepository interface {
	List(ctx context.Context, filter JobFilter, cred Credential) ([]Job, error)
	GetByID(ctx context.Context, id int64, cred Credential) (*Job, error)
}

type JobUsecase interface {
	ListJobs(ctx context.Context, filter JobFilter) ([]Job, error)
	GetJob(ctx context.Context, id int64) (*Job, error)
}
