package domain

import "context"

// Skill is a shared many-to-one record, deduplicated upstream by the exact
// (skillName, level) pair and referenced by multiple profiles.
type Skill struct {
	ID         int64  `json:"id"`
	DocumentID string `json:"documentId,omitempty"`
	SkillName  string `json:"skillName"`
	Level      string `json:"level"`
}

type SkillInput struct {
	ID        *int64 `json:"id,omitempty"`
	SkillName string `json:"skillName" validate:"required,min=1,max=80"`
	Level     string `json:"level" validate:"required,oneof=Beginner Intermediate Advanced Expert"`
}

type SkillRepository interface {
	// FindByNameAndLevel returns (nil, nil) when no matching skill exists.
	// The match is exact and case-sensitive.
	FindByNameAndLevel(ctx context.Context, name, level string, cred Credential) (*EntityRef, error)
	Create(ctx context.Context, in SkillInput, cred Credential) (*EntityRef, error)
}
