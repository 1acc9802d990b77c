package usecase

import (
	"context"

	"go-admissions-backend/internal/domain"
	"go-admissions-backend/pkg/apperror"
)

type catalogUsecase struct {
	catalog domain.CatalogRepository
}

func NewCatalogUsecase(catalog domain.CatalogRepository) domain.CatalogUsecase {
	return &catalogUsecase{catalog: catalog}
}

func (u *catalogUsecase) GetCompany(ctx context.Context, id int64) (*domain.Company, error) {
	company, err := u.catalog.GetCompany(ctx, id, domain.ServiceCredential())
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, apperror.NotFound("Company not found")
	}
	return company, nil
}

func (u *catalogUsecase) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return u.catalog.ListCategories(ctx, domain.ServiceCredential())
}

// ListLocations serves the hierarchical country/region/zone/woreda pickers.
// The parent filter narrows a level to one branch of the hierarchy.
func (u *catalogUsecase) ListLocations(ctx context.Context, kind domain.LocationKind, parentID *int64) ([]domain.Location, error) {
	if !kind.Valid() {
		return nil, apperror.BadRequest("Unknown location level")
	}
	if kind == domain.LocationCountry && parentID != nil {
		return nil, apperror.BadRequest("Countries have no parent filter")
	}
	return u.catalog.ListLocations(ctx, kind, parentID, domain.ServiceCredential())
}
