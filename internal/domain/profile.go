package domain

import (
	"context"
)

// ProfileRole names the per-role profile kind. Each authenticated user has at
// most one profile per role.
type ProfileRole string

const (
	RoleStudent   ProfileRole = "student"
	RoleCandidate ProfileRole = "candidate"
	RoleEmployer  ProfileRole = "employer"
)

func (r ProfileRole) Valid() bool {
	switch r {
	case RoleStudent, RoleCandidate, RoleEmployer:
		return true
	}
	return false
}

// EntityRef identifies a CMS record. The numeric ID is canonical for writes;
// DocumentID is carried because some upstream endpoints only echo the opaque
// form.
type EntityRef struct {
	ID         int64  `json:"id"`
	DocumentID string `json:"documentId,omitempty"`
}

// Address is an embedded component of a profile. Once persisted the CMS
// assigns it a component ID which must be echoed back on update but must
// never appear in a create payload. Location fields are bare numeric foreign
// keys.
type Address struct {
	ID          *int64 `json:"id,omitempty"`
	Street      string `json:"street,omitempty"`
	City        string `json:"city,omitempty"`
	Kebele      string `json:"kebele,omitempty"`
	HouseNumber string `json:"houseNumber,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	FullName    string `json:"fullName,omitempty"` // contact-person component only
	Country     *int64 `json:"country,omitempty"`
	Region      *int64 `json:"region,omitempty"`
	Zone        *int64 `json:"zone,omitempty"`
	Woreda      *int64 `json:"woreda,omitempty"`
}

// Profile is the per-user, per-role record as read back from the CMS with its
// children populated.
type Profile struct {
	ID         int64       `json:"id"`
	DocumentID string      `json:"documentId,omitempty"`
	Role       ProfileRole `json:"role"`
	UserID     int64       `json:"userId"`

	FullName    string `json:"fullName,omitempty"`
	Gender      string `json:"gender,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Bio         string `json:"bio,omitempty"`
	Status      string `json:"status,omitempty"` // draft | submitted | complete
	CompanyID   *int64 `json:"company,omitempty"`

	ResidentialAddress *Address `json:"residentialAddress,omitempty"`
	BirthAddress       *Address `json:"birthAddress,omitempty"`
	ContactPerson      *Address `json:"contactPerson,omitempty"`

	PrimaryEducation   *Education  `json:"primaryEducation,omitempty"`
	SecondaryEducation *Education  `json:"secondaryEducation,omitempty"`
	TertiaryEducations []Education `json:"tertiaryEducations,omitempty"`

	Skills                  []Skill      `json:"skills,omitempty"`
	Experiences             []Experience `json:"experiences,omitempty"`
	ProfessionalExperiences []Experience `json:"professionalExperiences,omitempty"`
	ResearchEngagements     []Experience `json:"researchEngagements,omitempty"`

	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

func (p *Profile) Ref() EntityRef {
	return EntityRef{ID: p.ID, DocumentID: p.DocumentID}
}

// ProfilePayload is a partial profile submission from a multi-step form.
// Pointer scalars and nil slices mean "field omitted, leave as-is"; a non-nil
// empty slice means "clear this relation".
type ProfilePayload struct {
	FullName    *string `json:"fullName,omitempty" validate:"omitempty,min=2,max=120,valid_name"`
	Gender      *string `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty" validate:"omitempty,valid_phone"`
	Bio         *string `json:"bio,omitempty" validate:"omitempty,max=1000,no_emoji"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=draft submitted complete"`
	CompanyID   *int64  `json:"company,omitempty"` // employer profiles only

	ResidentialAddress *Address `json:"residentialAddress,omitempty"`
	BirthAddress       *Address `json:"birthAddress,omitempty"`
	ContactPerson      *Address `json:"contactPerson,omitempty"`

	PrimaryEducation   *EducationInput  `json:"primaryEducation,omitempty"`
	SecondaryEducation *EducationInput  `json:"secondaryEducation,omitempty"`
	TertiaryEducations []EducationInput `json:"tertiaryEducations,omitempty" validate:"omitempty,dive"`

	Skills                  []SkillInput      `json:"skills,omitempty" validate:"omitempty,dive"`
	Experiences             []ExperienceInput `json:"experiences,omitempty" validate:"omitempty,dive"`
	ProfessionalExperiences []ExperienceInput `json:"professionalExperiences,omitempty" validate:"omitempty,dive"`
	ResearchEngagements     []ExperienceInput `json:"researchEngagements,omitempty" validate:"omitempty,dive"`
}

// ChildFailure records a child record that could not be created or updated.
// Siblings already committed upstream stay committed; there is no rollback.
type ChildFailure struct {
	Relation string `json:"relation"`
	Name     string `json:"name"`
	Reason   string `json:"reason"`
}

// UpsertResult is returned to the caller so it can cache resolved child IDs
// for subsequent partial saves.
type UpsertResult struct {
	Profile  *Profile           `json:"profile"`
	Created  bool               `json:"created"`
	ChildIDs map[string][]int64 `json:"childIds,omitempty"`
	Failures []ChildFailure     `json:"failures,omitempty"`
}

// ProfileRepository is the CMS-backed store for the three profile kinds.
// FindByUser returns (nil, nil) when no profile exists; that filtered lookup
// is the single source of truth for existence and canonical identifiers.
type ProfileRepository interface {
	FindByUser(ctx context.Context, role ProfileRole, userID int64, cred Credential) (*Profile, error)
	Create(ctx context.Context, role ProfileRole, data map[string]any, cred Credential) (*Profile, error)
	Update(ctx context.Context, role ProfileRole, ref EntityRef, data map[string]any, cred Credential) (*Profile, error)
	GetPopulated(ctx context.Context, role ProfileRole, ref EntityRef, cred Credential) (*Profile, error)
}

type ProfileUsecase interface {
	GetOwnProfile(ctx context.Context, role ProfileRole) (*Profile, error)
	UpsertProfile(ctx context.Context, role ProfileRole, payload *ProfilePayload) (*UpsertResult, error)
	UpdateProfileByID(ctx context.Context, role ProfileRole, id int64, payload *ProfilePayload) (*UpsertResult, error)
}
