package cms

import (
	"context"
	"net/url"
	"strconv"

	"go-admissions-backend/internal/domain"
)

type JobRepository struct {
	client *Client
}

func NewJobRepository(client *Client) *JobRepository {
	return &JobRepository{client: client}
}

func (r *JobRepository) List(ctx context.Context, filter domain.JobFilter, cred domain.Credential) ([]domain.Job, error) {
	q := url.Values{}
	populate(q, "category", "location", "company", "salary")

	if filter.CategoryID != nil {
		filterEqInt(q, *filter.CategoryID, "category", "id")
	}
	if filter.LocationID != nil {
		filterEqInt(q, *filter.LocationID, "location", "id")
	}
	if filter.CompanyID != nil {
		filterEqInt(q, *filter.CompanyID, "company", "id")
	}
	if filter.Search != "" {
		q.Set("filters[title][$containsi]", filter.Search)
	}
	if filter.Page > 0 {
		q.Set("pagination[page]", strconv.Itoa(filter.Page))
	}
	if filter.PageSize > 0 {
		q.Set("pagination[pageSize]", strconv.Itoa(filter.PageSize))
	}
	q.Set("sort", "publishedAt:desc")

	env, err := r.client.Get(ctx, "/api/jobs", q, cred)
	if err != nil {
		return nil, err
	}
	entries, err := env.Many()
	if err != nil {
		return nil, err
	}

	jobs := make([]domain.Job, 0, len(entries))
	for _, e := range entries {
		job, err := jobFromEntry(&e)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, nil
}

func (r *JobRepository) GetByID(ctx context.Context, id int64, cred domain.Credential) (*domain.Job, error) {
	q := url.Values{}
	filterEqInt(q, id, "id")
	populate(q, "category", "location", "company", "salary")

	env, err := r.client.Get(ctx, "/api/jobs", q, cred)
	if err != nil {
		return nil, err
	}
	entry, err := env.One()
	if err != nil || entry == nil {
		return nil, err
	}
	return jobFromEntry(entry)
}

func jobFromEntry(e *Entry) (*domain.Job, error) {
	job := &domain.Job{
		ID:          e.ID,
		DocumentID:  e.DocumentID,
		Title:       e.String("title"),
		Description: e.String("description"),
		Deadline:    e.String("deadline"),
		PublishedAt: e.String("publishedAt"),
		CompanyID:   e.RelationID("company"),
	}

	if cat, err := e.RelationOne("category"); err != nil {
		return nil, err
	} else if cat != nil {
		job.Category = cat.String("name")
	}

	if loc, err := e.RelationOne("location"); err != nil {
		return nil, err
	} else if loc != nil {
		job.Location = loc.String("name")
	}

	if sal, err := e.RelationOne("salary"); err != nil {
		return nil, err
	} else if sal != nil {
		job.SalaryMin = sal.Float("min")
		job.SalaryMax = sal.Float("max")
	}

	return job, nil
}
