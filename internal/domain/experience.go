package domain

import "context"

// ExperienceKind maps to the three list-valued experience collections.
type ExperienceKind string

const (
	ExperienceWork         ExperienceKind = "work"
	ExperienceProfessional ExperienceKind = "professional"
	ExperienceResearch     ExperienceKind = "research"
)

// Experience covers work experiences, professional experiences and research
// engagements; research records use Organization as the publication venue and
// Year as the publication year.
type Experience struct {
	ID           int64  `json:"id"`
	DocumentID   string `json:"documentId,omitempty"`
	Title        string `json:"title"`
	Organization string `json:"organization,omitempty"`
	StartDate    string `json:"startDate,omitempty"`
	EndDate      string `json:"endDate,omitempty"`
	Year         int    `json:"year,omitempty"`
	Description  string `json:"description,omitempty"`
	AttachmentID *int64 `json:"attachment,omitempty"` // upload file reference
}

type ExperienceInput struct {
	ID           *int64  `json:"id,omitempty"`
	Title        string  `json:"title" validate:"required,min=2,max=150"`
	Organization *string `json:"organization,omitempty" validate:"omitempty,max=150,valid_name"`
	StartDate    *string `json:"startDate,omitempty"`
	EndDate      *string `json:"endDate,omitempty"`
	Year         *int    `json:"year,omitempty" validate:"omitempty,min=1900,max_current_year"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=2000,no_emoji"`
	AttachmentID *int64  `json:"attachment,omitempty"`
}

type ExperienceRepository interface {
	Create(ctx context.Context, kind ExperienceKind, in ExperienceInput, cred Credential) (*EntityRef, error)
	Update(ctx context.Context, kind ExperienceKind, id int64, in ExperienceInput, cred Credential) (*EntityRef, error)
}
