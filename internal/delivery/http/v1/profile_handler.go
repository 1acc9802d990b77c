package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"go-admissions-backend/internal/delivery/http/response"
	"go-admissions-backend/internal/domain"
	"go-admissions-backend/pkg/apperror"
)

// ProfileHandler serves one of the three role-scoped profile surfaces. The
// same handler is registered under /student-profiles, /candidate-profiles and
// /employer-profiles with the matching role.
type ProfileHandler struct {
	role      domain.ProfileRole
	profileUC domain.ProfileUsecase
}

func NewProfileHandler(protected *gin.RouterGroup, path string, role domain.ProfileRole, profileUC domain.ProfileUsecase, writeLimit gin.HandlerFunc) {
	handler := &ProfileHandler{role: role, profileUC: profileUC}

	profiles := protected.Group("/" + path)
	{
		profiles.GET("/me", handler.GetOwn)
		profiles.POST("", writeLimit, handler.Upsert)
		profiles.PUT("/:id", writeLimit, handler.UpdateByID)
	}
}

// GetOwn godoc
// @Summary      Get own profile
// @Description  Get the profile belonging to the authenticated account for this role
// @Tags         profiles
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.Profile}
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /student-profiles/me [get]
// @Security     BearerAuth
func (h *ProfileHandler) GetOwn(c *gin.Context) {
	profile, err := h.profileUC.GetOwnProfile(c.Request.Context(), h.role)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profile", profile)
}

// Upsert godoc
// @Summary      Create or update own profile
// @Description  Save a partial profile submission. Creates the profile on first save and updates it on every save after that; omitted fields are left untouched.
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Param        profile  body      domain.ProfilePayload  true  "Partial profile data"
// @Success      200      {object}  response.Response{data=domain.UpsertResult}
// @Success      201      {object}  response.Response{data=domain.UpsertResult}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Failure      502      {object}  response.Response
// @Router       /student-profiles [post]
// @Security     BearerAuth
func (h *ProfileHandler) Upsert(c *gin.Context) {
	var payload domain.ProfilePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.Error(apperror.BadRequest("Invalid request body: " + err.Error()))
		return
	}

	result, err := h.profileUC.UpsertProfile(c.Request.Context(), h.role, &payload)
	if err != nil {
		c.Error(err)
		return
	}

	code := http.StatusOK
	message := "Profile updated"
	if result.Created {
		code = http.StatusCreated
		message = "Profile created"
	}
	if len(result.Failures) > 0 {
		message += " (some related records could not be saved)"
	}
	response.Success(c, code, message, result)
}

// UpdateByID godoc
// @Summary      Update profile by identifier
// @Description  Update the profile the UI knows by numeric identifier. The identifier must match the caller's own profile.
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Param        id       path      int                    true  "Profile ID"
// @Param        profile  body      domain.ProfilePayload  true  "Partial profile data"
// @Success      200      {object}  response.Response{data=domain.UpsertResult}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /student-profiles/{id} [put]
// @Security     BearerAuth
func (h *ProfileHandler) UpdateByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.Error(apperror.BadRequest("Profile id must be a positive number"))
		return
	}

	var payload domain.ProfilePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.Error(apperror.BadRequest("Invalid request body: " + err.Error()))
		return
	}

	result, err := h.profileUC.UpdateProfileByID(c.Request.Context(), h.role, id, &payload)
	if err != nil {
		c.Error(err)
		return
	}

	message := "Profile updated"
	if len(result.Failures) > 0 {
		message += " (some related records could not be saved)"
	}
	response.Success(c, http.StatusOK, message, result)
}
