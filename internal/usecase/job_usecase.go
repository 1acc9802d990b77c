package usecase

import (
	"context"

	"go-admissions-backend/internal/domain"
)

type jobUsecase struct {
	jobs domain.JobRepository
}

func NewJobUsecase(jobs domain.JobRepository) domain.JobUsecase {
	return &jobUsecase{jobs: jobs}
}

// ListJobs is a public read; it always goes upstream with the service
// credential so unauthenticated visitors can browse postings.
func (u *jobUsecase) ListJobs(ctx context.Context, filter domain.JobFilter) ([]domain.Job, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 10
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}

	return u.jobs.List(ctx, filter, domain.ServiceCredential())
}

func (u *jobUsecase) GetJob(ctx context.Context, id int64) (*domain.Job, error) {
	return u.jobs.GetByID(ctx, id, domain.ServiceCredential())
}
