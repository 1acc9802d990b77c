package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"go-admissions-backend/internal/domain"
	"go-admissions-backend/pkg/apperror"
	"go-admissions-backend/pkg/validation"
)

type profileUsecase struct {
	profiles    domain.ProfileRepository
	skills      domain.SkillRepository
	educations  domain.EducationRepository
	experiences domain.ExperienceRepository
	validate    *validator.Validate
	log         *slog.Logger
}

func NewProfileUsecase(
	profiles domain.ProfileRepository,
	skills domain.SkillRepository,
	educations domain.EducationRepository,
	experiences domain.ExperienceRepository,
	validate *validator.Validate,
	log *slog.Logger,
) domain.ProfileUsecase {
	return &profileUsecase{
		profiles:    profiles,
		skills:      skills,
		educations:  educations,
		experiences: experiences,
		validate:    validate,
		log:         log,
	}
}

func (u *profileUsecase) GetOwnProfile(ctx context.Context, role domain.ProfileRole) (*domain.Profile, error) {
	session, ok := domain.SessionFromContext(ctx)
	if !ok {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	if session.Role != string(role) {
		return nil, apperror.Forbidden(fmt.Sprintf("Only %ss can access this profile", role))
	}

	profile, err := u.profiles.FindByUser(ctx, role, session.UserID, domain.UserCredential(session.Token))
	if err != nil {
		return nil, fromUpstream(err)
	}
	if profile == nil {
		return nil, apperror.NotFound(fmt.Sprintf("No %s profile found for this account", role))
	}
	return profile, nil
}

// UpsertProfile is the create-or-update entry point for multi-step form
// saves. At most one profile exists per (user, role): existence is decided by
// the session-filtered lookup, never by a client-supplied identifier, so a
// second submission updates instead of duplicating.
func (u *profileUsecase) UpsertProfile(ctx context.Context, role domain.ProfileRole, payload *domain.ProfilePayload) (*domain.UpsertResult, error) {
	return u.upsert(ctx, role, payload, nil)
}

// UpdateProfileByID verifies the UI-supplied identifier against the profile
// resolved from the session before writing. A mismatch is a Forbidden, not a
// redirect to the requested record.
func (u *profileUsecase) UpdateProfileByID(ctx context.Context, role domain.ProfileRole, id int64, payload *domain.ProfilePayload) (*domain.UpsertResult, error) {
	return u.upsert(ctx, role, payload, &id)
}

func (u *profileUsecase) upsert(ctx context.Context, role domain.ProfileRole, payload *domain.ProfilePayload, requestedID *int64) (*domain.UpsertResult, error) {
	session, ok := domain.SessionFromContext(ctx)
	if !ok {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	if !role.Valid() {
		return nil, apperror.BadRequest("Unknown profile role")
	}
	if session.Role != string(role) {
		return nil, apperror.Forbidden(fmt.Sprintf("Only %ss can modify this profile", role))
	}
	if payload == nil {
		return nil, apperror.BadRequest("Request body is required")
	}
	if err := u.validate.Struct(payload); err != nil {
		return nil, apperror.BadRequest(validation.Translate(err))
	}

	cred := domain.UserCredential(session.Token)

	// Step 1: filtered lookup is the single source of truth for existence
	// and for the canonical write identifier.
	existing, err := u.profiles.FindByUser(ctx, role, session.UserID, cred)
	if err != nil {
		return nil, fromUpstream(err)
	}
	if existing != nil && existing.UserID != 0 && existing.UserID != session.UserID {
		// should be impossible with a filtered lookup; guards a confused upstream
		return nil, apperror.Forbidden("Profile does not belong to the authenticated user")
	}
	if requestedID != nil {
		if existing == nil {
			return nil, apperror.NotFound("No profile exists for this account")
		}
		if existing.ID != *requestedID {
			return nil, apperror.Forbidden("Profile identifier does not match the authenticated user's profile")
		}
	}

	// Steps 2-4: children first, sequentially, then the cleaned top-level payload.
	data, childIDs, failures, err := u.composePayload(ctx, session, payload, existing, cred)
	if err != nil {
		return nil, err
	}

	// Step 5: create or update against the canonical identifier.
	var written *domain.Profile
	created := existing == nil
	if created {
		written, err = u.profiles.Create(ctx, role, data, cred)
	} else {
		written, err = u.profiles.Update(ctx, role, existing.Ref(), data, cred)
	}
	if err != nil {
		// children already committed stay committed; accepted limitation
		if len(failures) > 0 {
			u.log.Warn("profile write failed after child writes", "role", role, "user_id", session.UserID, "child_failures", len(failures))
		}
		return nil, fromUpstream(err)
	}

	// Re-fetch with children populated so the caller can cache IDs. Best
	// effort: the write already succeeded.
	if full, err := u.profiles.GetPopulated(ctx, role, written.Ref(), cred); err == nil && full != nil {
		written = full
	}
	written.Role = role
	if written.UserID == 0 {
		written.UserID = session.UserID
	}

	return &domain.UpsertResult{
		Profile:  written,
		Created:  created,
		ChildIDs: childIDs,
		Failures: failures,
	}, nil
}

// fromUpstream passes structured app errors through and downgrades everything
// else to a gateway-class error so raw upstream failures never reach clients
// unlabelled.
func fromUpstream(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.New(http.StatusBadGateway, "Upstream store error: "+err.Error(), err)
}
