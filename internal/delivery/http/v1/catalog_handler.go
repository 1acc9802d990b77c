package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"go-admissions-backend/internal/delivery/http/response"
	"go-admissions-backend/internal/domain"
	"go-admissions-backend/pkg/apperror"
)

// CatalogHandler serves the public lookup data the frontend forms depend on:
// companies, job categories and the location hierarchy.
type CatalogHandler struct {
	catalogUC domain.CatalogUsecase
}

func NewCatalogHandler(public *gin.RouterGroup, catalogUC domain.CatalogUsecase) {
	handler := &CatalogHandler{catalogUC: catalogUC}

	public.GET("/companies/:id", handler.GetCompany)
	public.GET("/categories", handler.ListCategories)

	locations := public.Group("/locations")
	{
		locations.GET("/countries", handler.listLocations(domain.LocationCountry))
		locations.GET("/regions", handler.listLocations(domain.LocationRegion))
		locations.GET("/zones", handler.listLocations(domain.LocationZone))
		locations.GET("/woredas", handler.listLocations(domain.LocationWoreda))
	}
}

// GetCompany godoc
// @Summary      Get a company
// @Tags         catalog
// @Produce      json
// @Param        id   path      int  true  "Company ID"
// @Success      200  {object}  response.Response{data=domain.Company}
// @Failure      404  {object}  response.Response
// @Router       /companies/{id} [get]
func (h *CatalogHandler) GetCompany(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.Error(apperror.BadRequest("Company id must be a positive number"))
		return
	}

	company, err := h.catalogUC.GetCompany(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Company", company)
}

// ListCategories godoc
// @Summary      List job categories
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Category}
// @Router       /categories [get]
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalogUC.ListCategories(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Categories", categories)
}

// listLocations godoc
// @Summary      List locations at one level of the hierarchy
// @Description  List countries, regions, zones or woredas. All levels except countries accept a parent query to narrow to one branch.
// @Tags         catalog
// @Produce      json
// @Param        parent  query     int  false  "Parent location ID"
// @Success      200     {object}  response.Response{data=[]domain.Location}
// @Router       /locations/regions [get]
func (h *CatalogHandler) listLocations(kind domain.LocationKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var parentID *int64
		if raw := c.Query("parent"); raw != "" {
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || v <= 0 {
				c.Error(apperror.BadRequest("Parent id must be a positive number"))
				return
			}
			parentID = &v
		}

		locations, err := h.catalogUC.ListLocations(c.Request.Context(), kind, parentID)
		if err != nil {
			c.Error(err)
			return
		}

		response.Success(c, http.StatusOK, "Locations", locations)
	}
}
