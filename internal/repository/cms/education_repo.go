package cms

import (
	"context"
	"fmt"

	"go-admissions-backend/internal/domain"
)

// Upstream collection names. "tertiar-educations" is misspelled in the CMS
// schema; renaming it there would break existing content, so the name is
// preserved.
var educationCollections = map[domain.EducationKind]string{
	domain.EducationPrimary:   "primary-educations",
	domain.EducationSecondary: "secondary-educations",
	domain.EducationTertiary:  "tertiar-educations",
}

type EducationRepository struct {
	client *Client
}

func NewEducationRepository(client *Client) *EducationRepository {
	return &EducationRepository{client: client}
}

func educationCollection(kind domain.EducationKind) (string, error) {
	coll, ok := educationCollections[kind]
	if !ok {
		return "", fmt.Errorf("cms: unknown education kind %q", kind)
	}
	return coll, nil
}

// educationData builds the write body. Only fields present in the input are
// sent; the record identifier never goes in the body.
func educationData(in domain.EducationInput) map[string]any {
	data := map[string]any{
		"schoolName": in.SchoolName,
	}
	if in.FieldOfStudy != nil {
		data["fieldOfStudy"] = *in.FieldOfStudy
	}
	if in.StartYear != nil {
		data["startYear"] = *in.StartYear
	}
	if in.EndYear != nil {
		data["endYear"] = *in.EndYear
	}
	if in.Result != nil {
		data["result"] = *in.Result
	}
	if in.CertificateID != nil {
		data["certificate"] = *in.CertificateID
	}
	return data
}

func (r *EducationRepository) Create(ctx context.Context, kind domain.EducationKind, in domain.EducationInput, cred domain.Credential) (*domain.EntityRef, error) {
	coll, err := educationCollection(kind)
	if err != nil {
		return nil, err
	}

	env, err := r.client.CreateWithFallback(ctx, coll, educationData(in), cred)
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

func (r *EducationRepository) Update(ctx context.Context, kind domain.EducationKind, id int64, in domain.EducationInput, cred domain.Credential) (*domain.EntityRef, error) {
	coll, err := educationCollection(kind)
	if err != nil {
		return nil, err
	}

	ref := domain.EntityRef{ID: id}
	env, err := r.client.UpdateWithFallback(ctx, coll, ref, educationData(in), cred, nil)
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
