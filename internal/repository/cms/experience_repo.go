package cms

import (
	"context"
	"fmt"

	"go-admissions-backend/internal/domain"
)

var experienceCollections = map[domain.ExperienceKind]string{
	domain.ExperienceWork:         "experiences",
	domain.ExperienceProfessional: "professional-experiences",
	domain.ExperienceResearch:     "research-engagements",
}

type ExperienceRepository struct {
	client *Client
}

func NewExperienceRepository(client *Client) *ExperienceRepository {
	return &ExperienceRepository{client: client}
}

func experienceCollection(kind domain.ExperienceKind) (string, error) {
	coll, ok := experienceCollections[kind]
	if !ok {
		return "", fmt.Errorf("cms: unknown experience kind %q", kind)
	}
	return coll, nil
}

func experienceData(in domain.ExperienceInput) map[string]any {
	data := map[string]any{
		"title": in.Title,
	}
	if in.Organization != nil {
		data["organization"] = *in.Organization
	}
	if in.StartDate != nil {
		data["startDate"] = *in.StartDate
	}
	if in.EndDate != nil {
		data["endDate"] = *in.EndDate
	}
	if in.Year != nil {
		data["year"] = *in.Year
	}
	if in.Description != nil {
		data["description"] = *in.Description
	}
	if in.AttachmentID != nil {
		// upload file reference, passed as a bare numeric id
		data["attachment"] = *in.AttachmentID
	}
	return data
}

func (r *ExperienceRepository) Create(ctx context.Context, kind domain.ExperienceKind, in domain.ExperienceInput, cred domain.Credential) (*domain.EntityRef, error) {
	coll, err := experienceCollection(kind)
	if err != nil {
		return nil, err
	}

	env, err := r.client.CreateWithFallback(ctx, coll, experienceData(in), cred)
	if err != nil {
		return nil, err
	}
	entry, err := env.One()
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("cms: %s create returned no record", coll)
	}
	return &domain.EntityRef{ID: entry.ID, DocumentID: entry.DocumentID}, nil
}

func (r *ExperienceRepository) Update(ctx context.Context, kind domain.ExperienceKind, id int64, in domain.ExperienceInput, cred domain.Credential) (*domain.EntityRef, error) {
	coll, err := experienceCollection(kind)
	if err != nil {
		return nil, err
	}

	ref := domain.EntityRef{ID: id}
	env, err := r.client.UpdateWithFallback(ctx, coll, ref, experienceData(in), cred, nil)
	if err != nil {
		return nil, err
	}
	entry, err := env.One()
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return &ref, nil
	}
	return &domain.EntityRef{ID: entry.ID, DocumentID: entry.DocumentID}, nil
}
