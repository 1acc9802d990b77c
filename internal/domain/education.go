package domain

import "context"

// EducationKind selects which upstream collection an education record lives
// in. Primary and secondary are singular per profile; tertiary is a list.
type EducationKind string

const (
	EducationPrimary   EducationKind = "primary"
	EducationSecondary EducationKind = "secondary"
	EducationTertiary  EducationKind = "tertiary"
)

// Education is a first-class linked record, not an embedded component: it is
// created independently and then associated to the profile via a relation set.
type Education struct {
	ID            int64  `json:"id"`
	DocumentID    string `json:"documentId,omitempty"`
	SchoolName    string `json:"schoolName"`
	FieldOfStudy  string `json:"fieldOfStudy,omitempty"`
	StartYear     int    `json:"startYear,omitempty"`
	EndYear       int    `json:"endYear,omitempty"`
	Result        string `json:"result,omitempty"`
	CertificateID *int64 `json:"certificate,omitempty"` // upload file reference
}

type EducationInput struct {
	ID            *int64  `json:"id,omitempty"`
	SchoolName    string  `json:"schoolName" validate:"required,min=2,max=150,valid_name"`
	FieldOfStudy  *string `json:"fieldOfStudy,omitempty" validate:"omitempty,max=120"`
	StartYear     *int    `json:"startYear,omitempty" validate:"omitempty,min=1900,max_current_year"`
	EndYear       *int    `json:"endYear,omitempty" validate:"omitempty,min=1900,max_current_year"`
	Result        *string `json:"result,omitempty" validate:"omitempty,max=40"`
	CertificateID *int64  `json:"certificate,omitempty"`
}

type EducationRepository interface {
	Create(ctx context.Context, kind EducationKind, in EducationInput, cred Credential) (*EntityRef, error)
	Update(ctx context.Context, kind EducationKind, id int64, in EducationInput, cred Credential) (*EntityRef, error)
}
