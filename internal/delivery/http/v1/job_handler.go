package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"go-admissions-backend/internal/delivery/http/response"
	"go-admissions-backend/internal/domain"
	"go-admissions-backend/pkg/apperror"
)

type JobHandler struct {
	jobUC domain.JobUsecase
}

// NewJobHandler registers the public job browsing routes
func NewJobHandler(public *gin.RouterGroup, jobUC domain.JobUsecase) {
	handler := &JobHandler{jobUC: jobUC}

	jobs := public.Group("/jobs")
	{
		jobs.GET("", handler.List)
		jobs.GET("/:id", handler.GetByID)
	}
}

// List godoc
// @Summary      List job postings
// @Description  List published job postings, optionally filtered by category, location, company or a title search.
// @Tags         jobs
// @Produce      json
// @Param        category  query     int     false  "Category ID"
// @Param        location  query     int     false  "Location ID"
// @Param        company   query     int     false  "Company ID"
// @Param        search    query     string  false  "Title search"
// @Param        page      query     int     false  "Page number"
// @Param        pageSize  query     int     false  "Page size (max 100)"
// @Success      200       {object}  response.Response{data=[]domain.Job}
// @Router       /jobs [get]
func (h *JobHandler) List(c *gin.Context) {
	filter := domain.JobFilter{
		Search:   c.Query("search"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "pageSize", 10),
	}
	filter.CategoryID = queryIntPtr(c, "category")
	filter.LocationID = queryIntPtr(c, "location")
	filter.CompanyID = queryIntPtr(c, "company")

	jobs, err := h.jobUC.ListJobs(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Jobs", jobs)
}

// GetByID godoc
// @Summary      Get a job posting
// @Tags         jobs
// @Produce      json
// @Param        id   path      int  true  "Job ID"
// @Success      200  {object}  response.Response{data=domain.Job}
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id} [get]
func (h *JobHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.Error(apperror.BadRequest("Job id must be a positive number"))
		return
	}

	job, err := h.jobUC.GetJob(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	if job == nil {
		c.Error(apperror.NotFound("Job not found"))
		return
	}

	response.Success(c, http.StatusOK, "Job", job)
}

func queryInt(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return v
}

func queryIntPtr(c *gin.Context, name string) *int64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}
