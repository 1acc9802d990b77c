package domain

import "context"

// Company is the employer-side organization record.
type Company struct {
	ID         int64  `json:"id"`
	DocumentID string `json:"documentId,omitempty"`
	Name       string `json:"name"`
	Industry   string `json:"industry,omitempty"`
	Website    string `json:"website,omitempty"`
	About      string `json:"about,omitempty"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// LocationKind selects one of the hierarchical location collections.
type LocationKind string

const (
	LocationCountry LocationKind = "countries"
	LocationRegion  LocationKind = "regions"
	LocationZone    LocationKind = "zones"
	LocationWoreda  LocationKind = "woredas"
)

func (k LocationKind) Valid() bool {
	switch k {
	case LocationCountry, LocationRegion, LocationZone, LocationWoreda:
		return true
	}
	return false
}

type Location struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parent,omitempty"`
}

type CatalogRepository interface {
	GetCompany(ctx context.Context, id int64, cred Credential) (*Company, error)
	ListCategories(ctx context.Context, cred Credential) ([]Category, error)
	ListLocations(ctx context.Context, kind LocationKind, parentID *int64, cred Credential) ([]Location, error)
}

type CatalogUsecase interface {
	GetCompany(ctx context.Context, id int64) (*Company, error)
	ListCategories(ctx context.Context) ([]Category, error)
	ListLocations(ctx context.Context, kind LocationKind, parentID *int64) ([]Location, error)
}
