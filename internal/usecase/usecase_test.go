package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"go-admissions-backend/internal/domain"
	"go-admissions-backend/internal/usecase"
	"go-admissions-backend/pkg/apperror"
	"go-admissions-backend/pkg/validation"
)

// Mock Repositories

type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) FindByUser(ctx context.Context, role domain.ProfileRole, userID int64, cred domain.Credential) (*domain.Profile, error) {
	args := m.Called(ctx, role, userID, cred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) Create(ctx context.Context, role domain.ProfileRole, data map[string]any, cred domain.Credential) (*domain.Profile, error) {
	args := m.Called(ctx, role, data, cred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) Update(ctx context.Context, role domain.ProfileRole, ref domain.EntityRef, data map[string]any, cred domain.Credential) (*domain.Profile, error) {
	args := m.Called(ctx, role, ref, data, cred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) GetPopulated(ctx context.Context, role domain.ProfileRole, ref domain.EntityRef, cred domain.Credential) (*domain.Profile, error) {
	args := m.Called(ctx, role, ref, cred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

type MockSkillRepo struct {
	mock.Mock
}

func (m *MockSkillRepo) FindByNameAndLevel(ctx context.Context, name, level string, cred domain.Credential) (*domain.EntityRef, error) {
	args := m.Called(ctx, name, level, cred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EntityRef), args.Error(1)
}

func (m *MockSkillRepo) Create(ctx context.Context, in domain.SkillInput, cred domain.Credential) (*domain.EntityRef, error) {
	args := m.Called(ctx, in, cred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EntityRef), args.Error(1)
}

type MockEducationRepo struct {
	mock.Mock
}

func (m *MockEducationRepo) Create(ctx context.Context, kind domain.EducationKind, in domain.EducationInput, cred domain.Credential) (*domain.EntityRef, error) {
	args := m.Called(ctx, kind, in, cred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EntityRef), args.Error(1)
}

func (m *MockEducationRepo) Update(ctx context.Context, kind domain.EducationKind, id int64, in domain.EducationInput, cred domain.Credential) (*domain.EntityRef, error) {
	args := m.Called(ctx, kind, id, in, cred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EntityRef), args.Error(1)
}

type MockExperienceRepo struct {
	mock.Mock
}

func (m *MockExperienceRepo) Create(ctx context.Context, kind domain.ExperienceKind, in domain.ExperienceInput, cred domain.Credential) (*domain.EntityRef, error) {
	args := m.Called(ctx, kind, in, cred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EntityRef), args.Error(1)
}

func (m *MockExperienceRepo) Update(ctx context.Context, kind domain.ExperienceKind, id int64, in domain.ExperienceInput, cred domain.Credential) (*domain.EntityRef, error) {
	args := m.Called(ctx, kind, id, in, cred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EntityRef), args.Error(1)
}

// Helpers

func newTestUsecase(profiles *MockProfileRepo, skills *MockSkillRepo, educations *MockEducationRepo, experiences *MockExperienceRepo) domain.ProfileUsecase {
	validate := validator.New()
	validation.RegisterValidators(validate)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return usecase.NewProfileUsecase(profiles, skills, educations, experiences, validate, log)
}

func studentSession() context.Context {
	return domain.ContextWithSession(context.Background(), domain.Session{
		UserID: 42,
		Email:  "jane@example.com",
		Role:   "student",
		Token:  "user-token",
	})
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func TestUpsertCreatesOnFirstSave(t *testing.T) {
	profiles := new(MockProfileRepo)
	uc := newTestUsecase(profiles, new(MockSkillRepo), new(MockEducationRepo), new(MockExperienceRepo))

	profiles.On("FindByUser", mock.Anything, domain.RoleStudent, int64(42), mock.Anything).Return(nil, nil)

	var captured map[string]any
	profiles.On("Create", mock.Anything, domain.RoleStudent, mock.MatchedBy(func(data map[string]any) bool {
		captured = data
		return true
	}), mock.Anything).Return(&domain.Profile{ID: 7, UserID: 42}, nil)
	profiles.On("GetPopulated", mock.Anything, domain.RoleStudent, mock.Anything, mock.Anything).Return(nil, apperror.NotFound("not populated"))

	result, err := uc.UpsertProfile(studentSession(), domain.RoleStudent, &domain.ProfilePayload{
		FullName: strPtr("Jane Doe"),
	})

	assert.NoError(t, err)
	assert.True(t, result.Created)
	assert.Equal(t, int64(7), result.Profile.ID)
	assert.Equal(t, int64(42), captured["user"], "association must come from the session")
	assert.Equal(t, "Jane Doe", captured["fullName"])
	profiles.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpsertUpdatesWhenProfileExists(t *testing.T) {
	profiles := new(MockProfileRepo)
	uc := newTestUsecase(profiles, new(MockSkillRepo), new(MockEducationRepo), new(MockExperienceRepo))

	existing := &domain.Profile{ID: 7, DocumentID: "abc123", UserID: 42}
	profiles.On("FindByUser", mock.Anything, domain.RoleStudent, int64(42), mock.Anything).Return(existing, nil)
	profiles.On("Update", mock.Anything, domain.RoleStudent, existing.Ref(), mock.Anything, mock.Anything).Return(existing, nil)
	profiles.On("GetPopulated", mock.Anything, domain.RoleStudent, mock.Anything, mock.Anything).Return(existing, nil)

	result, err := uc.UpsertProfile(studentSession(), domain.RoleStudent, &domain.ProfilePayload{
		Bio: strPtr("Updated bio"),
	})

	assert.NoError(t, err)
	assert.False(t, result.Created, "a second save must update, never duplicate")
	profiles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpsertRequiresAuthentication(t *testing.T) {
	uc := newTestUsecase(new(MockProfileRepo), new(MockSkillRepo), new(MockEducationRepo), new(MockExperienceRepo))

	_, err := uc.UpsertProfile(context.Background(), domain.RoleStudent, &domain.ProfilePayload{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not authenticated")
}

func TestUpsertEnforcesRoleMatch(t *testing.T) {
	uc := newTestUsecase(new(MockProfileRepo), new(MockSkillRepo), new(MockEducationRepo), new(MockExperienceRepo))

	_, err := uc.UpsertProfile(studentSession(), domain.RoleEmployer, &domain.ProfilePayload{})
	assert.Error(t, err)
	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.Code)
}

func TestUpdateByIDRejectsForeignIdentifier(t *testing.T) {
	profiles := new(MockProfileRepo)
	uc := newTestUsecase(profiles, new(MockSkillRepo), new(MockEducationRepo), new(MockExperienceRepo))

	existing := &domain.Profile{ID: 7, UserID: 42}
	profiles.On("FindByUser", mock.Anything, domain.RoleStudent, int64(42), mock.Anything).Return(existing, nil)

	// the caller's own profile is 7; asking to write 99 must be refused
	_, err := uc.UpdateProfileByID(studentSession(), domain.RoleStudent, 99, &domain.ProfilePayload{})
	assert.Error(t, err)
	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.Code)
	profiles.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateByIDWithoutProfileIsNotFound(t *testing.T) {
	profiles := new(MockProfileRepo)
	uc := newTestUsecase(profiles, new(MockSkillRepo), new(MockEducationRepo), new(MockExperienceRepo))

	profiles.On("FindByUser", mock.Anything, domain.RoleStudent, int64(42), mock.Anything).Return(nil, nil)

	_, err := uc.UpdateProfileByID(studentSession(), domain.RoleStudent, 7, &domain.ProfilePayload{})
	assert.Error(t, err)
	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Code)
}

func TestSkillReusedWhenNaturalKeyMatches(t *testing.T) {
	profiles := new(MockProfileRepo)
	skills := new(MockSkillRepo)
	uc := newTestUsecase(profiles, skills, new(MockEducationRepo), new(MockExperienceRepo))

	profiles.On("FindByUser", mock.Anything, domain.RoleStudent, int64(42), mock.Anything).Return(nil, nil)
	skills.On("FindByNameAndLevel", mock.Anything, "Go", "Advanced", mock.Anything).Return(&domain.EntityRef{ID: 31}, nil)

	var captured map[string]any
	profiles.On("Create", mock.Anything, domain.RoleStudent, mock.MatchedBy(func(data map[string]any) bool {
		captured = data
		return true
	}), mock.Anything).Return(&domain.Profile{ID: 7, UserID: 42}, nil)
	profiles.On("GetPopulated", mock.Anything, domain.RoleStudent, mock.Anything, mock.Anything).Return(nil, apperror.NotFound("skip"))

	result, err := uc.UpsertProfile(studentSession(), domain.RoleStudent, &domain.ProfilePayload{
		Skills: []domain.SkillInput{{SkillName: "Go", Level: "Advanced"}},
	})

	assert.NoError(t, err)
	assert.Equal(t, []int64{31}, captured["skills"])
	assert.Equal(t, []int64{31}, result.ChildIDs["skills"])
	skills.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestSkillCreatedWhenLevelDiffers(t *testing.T) {
	profiles := new(MockProfileRepo)
	skills := new(MockSkillRepo)
	uc := newTestUsecase(profiles, skills, new(MockEducationRepo), new(MockExperienceRepo))

	profiles.On("FindByUser", mock.Anything, domain.RoleStudent, int64(42), mock.Anything).Return(nil, nil)
	// same name at a different level is a different record
	skills.On("FindByNameAndLevel", mock.Anything, "Go", "Expert", mock.Anything).Return(nil, nil)
	skills.On("Create", mock.Anything, domain.SkillInput{SkillName: "Go", Level: "Expert"}, mock.Anything).Return(&domain.EntityRef{ID: 55}, nil)

	profiles.On("Create", mock.Anything, domain.RoleStudent, mock.Anything, mock.Anything).Return(&domain.Profile{ID: 7, UserID: 42}, nil)
	profiles.On("GetPopulated", mock.Anything, domain.RoleStudent, mock.Anything, mock.Anything).Return(nil, apperror.NotFound("skip"))

	result, err := uc.UpsertProfile(studentSession(), domain.RoleStudent, &domain.ProfilePayload{
		Skills: []domain.SkillInput{{SkillName: "Go", Level: "Expert"}},
	})

	assert.NoError(t, err)
	assert.Equal(t, []int64{55}, result.ChildIDs["skills"])
	skills.AssertExpectations(t)
}

func TestExplicitEmptyListClearsRelation(t *testing.T) {
	profiles := new(MockProfileRepo)
	uc := newTestUsecase(profiles, new(MockSkillRepo), new(MockEducationRepo), new(MockExperienceRepo))

	existing := &domain.Profile{ID: 7, UserID: 42, Skills: []domain.Skill{{ID: 31, SkillName: "Go", Level: "Advanced"}}}
	profiles.On("FindByUser", mock.Anything, domain.RoleStudent, int64(42), mock.Anything).Return(existing, nil)

	var captured map[string]any
	profiles.On("Update", mock.Anything, domain.RoleStudent, existing.Ref(), mock.MatchedBy(func(data map[string]any) bool {
		captured = data
		return true
	}), mock.Anything).Return(existing, nil)
	profiles.On("GetPopulated", mock.Anything, domain.RoleStudent, mock.Anything, mock.Anything).Return(existing, nil)

	_, err := uc.UpsertProfile(studentSession(), domain.RoleStudent, &domain.ProfilePayload{
		Skills: []domain.SkillInput{},
	})

	assert.NoError(t, err)
	ids, present := captured["skills"].([]int64)
	assert.True(t, present, "an explicit empty list must be sent upstream")
	assert.Empty(t, ids)
}

func TestOmittedRelationLeftUntouched(t *testing.T) {
	profiles := new(MockProfileRepo)
	uc := newTestUsecase(profiles, new(MockSkillRepo), new(MockEducationRepo), new(MockExperienceRepo))

	existing := &domain.Profile{ID: 7, UserID: 42, Skills: []domain.Skill{{ID: 31, SkillName: "Go", Level: "Advanced"}}}
	profiles.On("FindByUser", mock.Anything, domain.RoleStudent, int64(42), mock.Anything).Return(existing, nil)

	var captured map[string]any
	profiles.On("Update", mock.Anything, domain.RoleStudent, existing.Ref(), mock.MatchedBy(func(data map[string]any) bool {
		captured = data
		return true
	}), mock.Anything).Return(existing, nil)
	profiles.On("GetPopulated", mock.Anything, domain.RoleStudent, mock.Anything, mock.Anything).Return(existing, nil)

	_, err := uc.UpsertProfile(studentSession(), domain.RoleStudent, &domain.ProfilePayload{
		Bio: strPtr("only the bio changes"),
	})

	assert.NoError(t, err)
	_, present := captured["skills"]
	assert.False(t, present, "omitted relations must not appear in the write body")
}

func TestAddressComponentIDStrippedOnCreate(t *testing.T) {
	profiles := new(MockProfileRepo)
	uc := newTestUsecase(profiles, new(MockSkillRepo), new(MockEducationRepo), new(MockExperienceRepo))

	profiles.On("FindByUser", mock.Anything, domain.RoleStudent, int64(42), mock.Anything).Return(nil, nil)

	var captured map[string]any
	profiles.On("Create", mock.Anything, domain.RoleStudent, mock.MatchedBy(func(data map[string]any) bool {
		captured = data
		return true
	}), mock.Anything).Return(&domain.Profile{ID: 7, UserID: 42}, nil)
	profiles.On("GetPopulated", mock.Anything, domain.RoleStudent, mock.Anything, mock.Anything).Return(nil, apperror.NotFound("skip"))

	_, err := uc.UpsertProfile(studentSession(), domain.RoleStudent, &domain.ProfilePayload{
		ResidentialAddress: &domain.Address{
			ID:     int64Ptr(5), // stale client-side id must not survive a create
			City:   "Addis Ababa",
			Region: int64Ptr(3),
		},
	})

	assert.NoError(t, err)
	addr, ok := captured["residentialAddress"].(map[string]any)
	assert.True(t, ok)
	_, hasID := addr["id"]
	assert.False(t, hasID)
	assert.Equal(t, "Addis Ababa", addr["city"])
	assert.Equal(t, int64(3), addr["region"], "location links go out as bare numeric keys")
}

func TestAddressComponentIDPreservedOnUpdate(t *testing.T) {
	profiles := new(MockProfileRepo)
	uc := newTestUsecase(profiles, new(MockSkillRepo), new(MockEducationRepo), new(MockExperienceRepo))

	existing := &domain.Profile{
		ID: 7, UserID: 42,
		ResidentialAddress: &domain.Address{ID: int64Ptr(12), City: "Adama"},
	}
	profiles.On("FindByUser", mock.Anything, domain.RoleStudent, int64(42), mock.Anything).Return(existing, nil)

	var captured map[string]any
	profiles.On("Update", mock.Anything, domain.RoleStudent, existing.Ref(), mock.MatchedBy(func(data map[string]any) bool {
		captured = data
		return true
	}), mock.Anything).Return(existing, nil)
	profiles.On("GetPopulated", mock.Anything, domain.RoleStudent, mock.Anything, mock.Anything).Return(existing, nil)

	// client resubmits the component without its id
	_, err := uc.UpsertProfile(studentSession(), domain.RoleStudent, &domain.ProfilePayload{
		ResidentialAddress: &domain.Address{City: "Adama", Street: "Main St"},
	})

	assert.NoError(t, err)
	addr, ok := captured["residentialAddress"].(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, int64(12), addr["id"], "known component id must be echoed on update")
}

func TestSingularEducationReusesExistingRecord(t *testing.T) {
	profiles := new(MockProfileRepo)
	educations := new(MockEducationRepo)
	uc := newTestUsecase(profiles, new(MockSkillRepo), educations, new(MockExperienceRepo))

	existing := &domain.Profile{
		ID: 7, UserID: 42,
		PrimaryEducation: &domain.Education{ID: 21, SchoolName: "Old School"},
	}
	profiles.On("FindByUser", mock.Anything, domain.RoleStudent, int64(42), mock.Anything).Return(existing, nil)
	educations.On("Update", mock.Anything, domain.EducationPrimary, int64(21), mock.Anything, mock.Anything).Return(&domain.EntityRef{ID: 21}, nil)
	profiles.On("Update", mock.Anything, domain.RoleStudent, existing.Ref(), mock.Anything, mock.Anything).Return(existing, nil)
	profiles.On("GetPopulated", mock.Anything, domain.RoleStudent, mock.Anything, mock.Anything).Return(existing, nil)

	// submission without an id still updates the one existing record
	result, err := uc.UpsertProfile(studentSession(), domain.RoleStudent, &domain.ProfilePayload{
		PrimaryEducation: &domain.EducationInput{SchoolName: "New School"},
	})

	assert.NoError(t, err)
	assert.Equal(t, []int64{21}, result.ChildIDs["primaryEducation"])
	educations.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestChildFailureCollectedWhenSiblingSucceeds(t *testing.T) {
	profiles := new(MockProfileRepo)
	skills := new(MockSkillRepo)
	uc := newTestUsecase(profiles, skills, new(MockEducationRepo), new(MockExperienceRepo))

	profiles.On("FindByUser", mock.Anything, domain.RoleStudent, int64(42), mock.Anything).Return(nil, nil)
	skills.On("FindByNameAndLevel", mock.Anything, "Go", "Advanced", mock.Anything).Return(&domain.EntityRef{ID: 31}, nil)
	skills.On("FindByNameAndLevel", mock.Anything, "Rust", "Beginner", mock.Anything).Return(nil, nil)
	skills.On("Create", mock.Anything, domain.SkillInput{SkillName: "Rust", Level: "Beginner"}, mock.Anything).Return(nil, apperror.New(502, "upstream down", nil))

	profiles.On("Create", mock.Anything, domain.RoleStudent, mock.Anything, mock.Anything).Return(&domain.Profile{ID: 7, UserID: 42}, nil)
	profiles.On("GetPopulated", mock.Anything, domain.RoleStudent, mock.Anything, mock.Anything).Return(nil, apperror.NotFound("skip"))

	result, err := uc.UpsertProfile(studentSession(), domain.RoleStudent, &domain.ProfilePayload{
		Skills: []domain.SkillInput{
			{SkillName: "Go", Level: "Advanced"},
			{SkillName: "Rust", Level: "Beginner"},
		},
	})

	assert.NoError(t, err, "one failed sibling must not sink the save")
	assert.Equal(t, []int64{31}, result.ChildIDs["skills"])
	assert.Len(t, result.Failures, 1)
	assert.Equal(t, "skills", result.Failures[0].Relation)
}

func TestAllChildrenFailingAbortsWrite(t *testing.T) {
	profiles := new(MockProfileRepo)
	skills := new(MockSkillRepo)
	uc := newTestUsecase(profiles, skills, new(MockEducationRepo), new(MockExperienceRepo))

	profiles.On("FindByUser", mock.Anything, domain.RoleStudent, int64(42), mock.Anything).Return(nil, nil)
	skills.On("FindByNameAndLevel", mock.Anything, "Go", "Advanced", mock.Anything).Return(nil, nil)
	skills.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil, apperror.New(502, "upstream down", nil))

	_, err := uc.UpsertProfile(studentSession(), domain.RoleStudent, &domain.ProfilePayload{
		Skills: []domain.SkillInput{{SkillName: "Go", Level: "Advanced"}},
	})

	assert.Error(t, err, "losing every child of a submitted relation must not clear it")
	profiles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPayloadValidation(t *testing.T) {
	uc := newTestUsecase(new(MockProfileRepo), new(MockSkillRepo), new(MockEducationRepo), new(MockExperienceRepo))

	t.Run("Should reject an unknown skill level", func(t *testing.T) {
		_, err := uc.UpsertProfile(studentSession(), domain.RoleStudent, &domain.ProfilePayload{
			Skills: []domain.SkillInput{{SkillName: "Go", Level: "Wizard"}},
		})
		assert.Error(t, err)
		var appErr *apperror.AppError
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, 400, appErr.Code)
	})

	t.Run("Should reject an out-of-range gender value", func(t *testing.T) {
		_, err := uc.UpsertProfile(studentSession(), domain.RoleStudent, &domain.ProfilePayload{
			Gender: strPtr("unknown"),
		})
		assert.Error(t, err)
	})
}

func TestGetOwnProfile(t *testing.T) {
	profiles := new(MockProfileRepo)
	uc := newTestUsecase(profiles, new(MockSkillRepo), new(MockEducationRepo), new(MockExperienceRepo))

	t.Run("Should return the profile found by the session filter", func(t *testing.T) {
		profiles.On("FindByUser", mock.Anything, domain.RoleStudent, int64(42), mock.Anything).Return(&domain.Profile{ID: 7, UserID: 42}, nil).Once()
		profile, err := uc.GetOwnProfile(studentSession(), domain.RoleStudent)
		assert.NoError(t, err)
		assert.Equal(t, int64(7), profile.ID)
	})

	t.Run("Should be NotFound when no profile exists", func(t *testing.T) {
		profiles.On("FindByUser", mock.Anything, domain.RoleStudent, int64(42), mock.Anything).Return(nil, nil).Once()
		_, err := uc.GetOwnProfile(studentSession(), domain.RoleStudent)
		var appErr *apperror.AppError
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, 404, appErr.Code)
	})
}
