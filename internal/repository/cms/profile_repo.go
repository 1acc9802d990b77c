package cms

import (
	"context"
	"fmt"
	"net/url"

	"go-admissions-backend/internal/domain"
)

var profileCollections = map[domain.ProfileRole]string{
	domain.RoleStudent:   "student-profiles",
	domain.RoleCandidate: "candidate-profiles",
	domain.RoleEmployer:  "employer-profiles",
}

// profileRelations are requested on every populated read.
var profileRelations = []string{
	"user",
	"residentialAddress", "birthAddress", "contactPerson",
	"primaryEducation", "secondaryEducation", "tertiaryEducations",
	"skills", "experiences", "professionalExperiences", "researchEngagements",
	"company",
}

type ProfileRepository struct {
	client *Client
}

func NewProfileRepository(client *Client) *ProfileRepository {
	return &ProfileRepository{client: client}
}

func collectionFor(role domain.ProfileRole) (string, error) {
	coll, ok := profileCollections[role]
	if !ok {
		return "", fmt.Errorf("cms: unknown profile role %q", role)
	}
	return coll, nil
}

// FindByUser resolves the profile by a filtered lookup on the owning user.
// Client-supplied profile identifiers are never used here: the upstream
// permission layer answers direct-by-id lookups inconsistently, so this
// filtered read is the single source of truth for existence.
func (r *ProfileRepository) FindByUser(ctx context.Context, role domain.ProfileRole, userID int64, cred domain.Credential) (*domain.Profile, error) {
	coll, err := collectionFor(role)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	filterEqInt(q, userID, "user", "id")
	populate(q, profileRelations...)

	env, err := r.client.Get(ctx, "/api/"+coll, q, cred)
	if err != nil {
		return nil, err
	}
	entry, err := env.One()
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}
	return profileFromEntry(entry, role)
}

func (r *ProfileRepository) Create(ctx context.Context, role domain.ProfileRole, data map[string]any, cred domain.Credential) (*domain.Profile, error) {
	coll, err := collectionFor(role)
	if err != nil {
		return nil, err
	}

	env, err := r.client.CreateWithFallback(ctx, coll, data, cred)
	if err != nil {
		return nil, err
	}
	entry, err := env.One()
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("cms: create of %s returned no record", coll)
	}
	return profileFromEntry(entry, role)
}

func (r *ProfileRepository) Update(ctx context.Context, role domain.ProfileRole, ref domain.EntityRef, data map[string]any, cred domain.Credential) (*domain.Profile, error) {
	coll, err := collectionFor(role)
	if err != nil {
		return nil, err
	}

	// The last fallback rung re-resolves the canonical identifier with a
	// fresh filtered read, never trusting an identifier echoed by a prior
	// write.
	reresolve := func(rctx context.Context, rcred domain.Credential) (domain.EntityRef, error) {
		userID := ownerID(data, rctx)
		if userID == 0 {
			return domain.EntityRef{}, fmt.Errorf("cms: cannot re-resolve %s without owning user", coll)
		}
		fresh, err := r.FindByUser(rctx, role, userID, rcred)
		if err != nil {
			return domain.EntityRef{}, err
		}
		if fresh == nil {
			return domain.EntityRef{}, fmt.Errorf("cms: %s for user %d disappeared during update", coll, userID)
		}
		return fresh.Ref(), nil
	}

	env, err := r.client.UpdateWithFallback(ctx, coll, ref, data, cred, reresolve)
	if err != nil {
		return nil, err
	}
	entry, err := env.One()
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("cms: update of %s returned no record", coll)
	}
	return profileFromEntry(entry, role)
}

// GetPopulated re-fetches the profile with children populated. The read uses
// a filtered query on the numeric id because filtered reads are the only
// consistently-permitted read path upstream.
func (r *ProfileRepository) GetPopulated(ctx context.Context, role domain.ProfileRole, ref domain.EntityRef, cred domain.Credential) (*domain.Profile, error) {
	coll, err := collectionFor(role)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	filterEqInt(q, ref.ID, "id")
	populate(q, profileRelations...)

	env, err := r.client.Get(ctx, "/api/"+coll, q, cred)
	if err != nil {
		return nil, err
	}
	entry, err := env.One()
	if err != nil || entry == nil {
		return nil, err
	}
	return profileFromEntry(entry, role)
}

// ownerID extracts the owning user from the outgoing payload, falling back
// to the session user in context.
func ownerID(data map[string]any, ctx context.Context) int64 {
	switch v := data["user"].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	userID, _ := ctx.Value(domain.KeyUserID).(int64)
	return userID
}

func profileFromEntry(entry *Entry, role domain.ProfileRole) (*domain.Profile, error) {
	p := &domain.Profile{
		ID:          entry.ID,
		DocumentID:  entry.DocumentID,
		Role:        role,
		FullName:    entry.String("fullName"),
		Gender:      entry.String("gender"),
		DateOfBirth: entry.String("dateOfBirth"),
		PhoneNumber: entry.String("phoneNumber"),
		Bio:         entry.String("bio"),
		Status:      entry.String("profileStatus"),
		CreatedAt:   entry.String("createdAt"),
		UpdatedAt:   entry.String("updatedAt"),
	}

	if uid := entry.RelationID("user"); uid != nil {
		p.UserID = *uid
	}
	p.CompanyID = entry.RelationID("company")

	var err error
	if p.ResidentialAddress, err = addressFromRelation(entry, "residentialAddress"); err != nil {
		return nil, err
	}
	if p.BirthAddress, err = addressFromRelation(entry, "birthAddress"); err != nil {
		return nil, err
	}
	if p.ContactPerson, err = addressFromRelation(entry, "contactPerson"); err != nil {
		return nil, err
	}

	if p.PrimaryEducation, err = educationFromRelation(entry, "primaryEducation"); err != nil {
		return nil, err
	}
	if p.SecondaryEducation, err = educationFromRelation(entry, "secondaryEducation"); err != nil {
		return nil, err
	}

	tertiary, err := entry.RelationMany("tertiaryEducations")
	if err != nil {
		return nil, err
	}
	for _, t := range tertiary {
		p.TertiaryEducations = append(p.TertiaryEducations, *educationFromEntry(&t))
	}

	skills, err := entry.RelationMany("skills")
	if err != nil {
		return nil, err
	}
	for _, s := range skills {
		p.Skills = append(p.Skills, domain.Skill{
			ID:         s.ID,
			DocumentID: s.DocumentID,
			SkillName:  s.String("skillName"),
			Level:      s.String("level"),
		})
	}

	for key, dst := range map[string]*[]domain.Experience{
		"experiences":             &p.Experiences,
		"professionalExperiences": &p.ProfessionalExperiences,
		"researchEngagements":     &p.ResearchEngagements,
	} {
		entries, err := entry.RelationMany(key)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			*dst = append(*dst, *experienceFromEntry(&e))
		}
	}

	return p, nil
}

func addressFromRelation(entry *Entry, key string) (*domain.Address, error) {
	rel, err := entry.RelationOne(key)
	if err != nil || rel == nil {
		return nil, err
	}
	id := rel.ID
	return &domain.Address{
		ID:          &id,
		Street:      rel.String("street"),
		City:        rel.String("city"),
		Kebele:      rel.String("kebele"),
		HouseNumber: rel.String("houseNumber"),
		PhoneNumber: rel.String("phoneNumber"),
		FullName:    rel.String("fullName"),
		Country:     rel.RelationID("country"),
		Region:      rel.RelationID("region"),
		Zone:        rel.RelationID("zone"),
		Woreda:      rel.RelationID("woreda"),
	}, nil
}

func educationFromRelation(entry *Entry, key string) (*domain.Education, error) {
	rel, err := entry.RelationOne(key)
	if err != nil || rel == nil {
		return nil, err
	}
	return educationFromEntry(rel), nil
}

func educationFromEntry(e *Entry) *domain.Education {
	return &domain.Education{
		ID:            e.ID,
		DocumentID:    e.DocumentID,
		SchoolName:    e.String("schoolName"),
		FieldOfStudy:  e.String("fieldOfStudy"),
		StartYear:     int(e.Int("startYear")),
		EndYear:       int(e.Int("endYear")),
		Result:        e.String("result"),
		CertificateID: e.RelationID("certificate"),
	}
}

func experienceFromEntry(e *Entry) *domain.Experience {
	return &domain.Experience{
		ID:           e.ID,
		DocumentID:   e.DocumentID,
		Title:        e.String("title"),
		Organization: e.String("organization"),
		StartDate:    e.String("startDate"),
		EndDate:      e.String("endDate"),
		Year:         int(e.Int("year")),
		Description:  e.String("description"),
		AttachmentID: e.RelationID("attachment"),
	}
}
