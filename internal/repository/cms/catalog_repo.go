package cms

import (
	"context"
	"fmt"
	"net/url"

	"go-admissions-backend/internal/domain"
)

// parent relation field per location collection, for hierarchy filtering
var locationParentField = map[domain.LocationKind]string{
	domain.LocationRegion: "country",
	domain.LocationZone:   "region",
	domain.LocationWoreda: "zone",
}

type CatalogRepository struct {
	client *Client
}

func NewCatalogRepository(client *Client) *CatalogRepository {
	return &CatalogRepository{client: client}
}

func (r *CatalogRepository) GetCompany(ctx context.Context, id int64, cred domain.Credential) (*domain.Company, error) {
	q := url.Values{}
	filterEqInt(q, id, "id")

	env, err := r.client.Get(ctx, "/api/companies", q, cred)
	if err != nil {
		return nil, err
	}
	entry, err := env.One()
	if err != nil || entry == nil {
		return nil, err
	}
	return &domain.Company{
		ID:         entry.ID,
		DocumentID: entry.DocumentID,
		Name:       entry.String("name"),
		Industry:   entry.String("industry"),
		Website:    entry.String("website"),
		About:      entry.String("about"),
	}, nil
}

func (r *CatalogRepository) ListCategories(ctx context.Context, cred domain.Credential) ([]domain.Category, error) {
	q := url.Values{}
	q.Set("sort", "name:asc")

	env, err := r.client.Get(ctx, "/api/categories", q, cred)
	if err != nil {
		return nil, err
	}
	entries, err := env.Many()
	if err != nil {
		return nil, err
	}

	cats := make([]domain.Category, 0, len(entries))
	for _, e := range entries {
		cats = append(cats, domain.Category{ID: e.ID, Name: e.String("name")})
	}
	return cats, nil
}

func (r *CatalogRepository) ListLocations(ctx context.Context, kind domain.LocationKind, parentID *int64, cred domain.Credential) ([]domain.Location, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("cms: unknown location kind %q", kind)
	}

	q := url.Values{}
	q.Set("sort", "name:asc")
	parentField, hasParent := locationParentField[kind]
	if parentID != nil {
		if !hasParent {
			return nil, fmt.Errorf("cms: %s has no parent to filter on", kind)
		}
		filterEqInt(q, *parentID, parentField, "id")
	}

	env, err := r.client.Get(ctx, "/api/"+string(kind), q, cred)
	if err != nil {
		return nil, err
	}
	entries, err := env.Many()
	if err != nil {
		return nil, err
	}

	locs := make([]domain.Location, 0, len(entries))
	for _, e := range entries {
		loc := domain.Location{ID: e.ID, Name: e.String("name")}
		if hasParent {
			loc.ParentID = e.RelationID(parentField)
		}
		locs = append(locs, loc)
	}
	return locs, nil
}
