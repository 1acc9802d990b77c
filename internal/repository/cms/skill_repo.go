package cms

import (
	"context"
	"fmt"
	"net/url"

	"go-admissions-backend/internal/domain"
)

type SkillRepository struct {
	client *Client
}

func NewSkillRepository(client *Client) *SkillRepository {
	return &SkillRepository{client: client}
}

// FindByNameAndLevel matches the shared-skill natural key. Exact and
// case-sensitive: "go"/"Advanced" and "Go"/"Advanced" are distinct records.
func (r *SkillRepository) FindByNameAndLevel(ctx context.Context, name, level string, cred domain.Credential) (*domain.EntityRef, error) {
	q := url.Values{}
	filterEq(q, name, "skillName")
	filterEq(q, level, "level")

	env, err := r.client.Get(ctx, "/api/skills", q, cred)
	if err != nil {
		return nil, err
	}
	entry, err := env.One()
	if err != nil || entry == nil {
		return nil, err
	}
	return &domain.EntityRef{ID: entry.ID, DocumentID: entry.DocumentID}, nil
}

func (r *SkillRepository) Create(ctx context.Context, in domain.SkillInput, cred domain.Credential) (*domain.EntityRef, error) {
	data := map[string]any{
		"skillName": in.SkillName,
		"level":     in.Level,
	}

	env, err := r.client.CreateWithFallback(ctx, "skills", data, cred)
	if err != nil {
		return nil, err
	}
	entry, err := env.One()
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("cms: skill create returned no record")
	}
	return &domain.EntityRef{ID: entry.ID, DocumentID: entry.DocumentID}, nil
}
