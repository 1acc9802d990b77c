package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go-admissions-backend/internal/domain"
	"go-admissions-backend/pkg/apperror"
)

// composePayload turns a partial form submission into the top-level write
// body: child records reconciled to relation-set ID lists, embedded address
// components cleaned, scalars copied only when present. Child calls are
// sequential so retries stay deterministic and failures attributable.
func (u *profileUsecase) composePayload(
	ctx context.Context,
	session domain.Session,
	payload *domain.ProfilePayload,
	existing *domain.Profile,
	cred domain.Credential,
) (map[string]any, map[string][]int64, []domain.ChildFailure, error) {
	forCreate := existing == nil
	data := map[string]any{
		// association always derives from the session, never the client
		"user": session.UserID,
	}
	childIDs := map[string][]int64{}
	var failures []domain.ChildFailure

	// scalars: only fields present in the submission are altered
	setString(data, "fullName", payload.FullName)
	setString(data, "gender", payload.Gender)
	setString(data, "dateOfBirth", payload.DateOfBirth)
	setString(data, "phoneNumber", payload.PhoneNumber)
	setString(data, "bio", payload.Bio)
	setString(data, "profileStatus", payload.Status)
	if payload.CompanyID != nil {
		data["company"] = *payload.CompanyID
	}

	// embedded components
	if payload.ResidentialAddress != nil {
		data["residentialAddress"] = cleanAddress(payload.ResidentialAddress, addrOrNil(existing, func(p *domain.Profile) *domain.Address { return p.ResidentialAddress }), forCreate)
	}
	if payload.BirthAddress != nil {
		data["birthAddress"] = cleanAddress(payload.BirthAddress, addrOrNil(existing, func(p *domain.Profile) *domain.Address { return p.BirthAddress }), forCreate)
	}
	if payload.ContactPerson != nil {
		data["contactPerson"] = cleanAddress(payload.ContactPerson, addrOrNil(existing, func(p *domain.Profile) *domain.Address { return p.ContactPerson }), forCreate)
	}

	// singular education relations
	if payload.PrimaryEducation != nil {
		ref, fail := u.resolveSingularEducation(ctx, domain.EducationPrimary, *payload.PrimaryEducation, eduID(existing, func(p *domain.Profile) *domain.Education { return p.PrimaryEducation }), cred)
		if fail != nil {
			failures = append(failures, *fail)
		} else {
			data["primaryEducation"] = ref.ID
			childIDs["primaryEducation"] = []int64{ref.ID}
		}
	}
	if payload.SecondaryEducation != nil {
		ref, fail := u.resolveSingularEducation(ctx, domain.EducationSecondary, *payload.SecondaryEducation, eduID(existing, func(p *domain.Profile) *domain.Education { return p.SecondaryEducation }), cred)
		if fail != nil {
			failures = append(failures, *fail)
		} else {
			data["secondaryEducation"] = ref.ID
			childIDs["secondaryEducation"] = []int64{ref.ID}
		}
	}

	// list-valued education relation
	if payload.TertiaryEducations != nil {
		ids, fs := u.resolveEducationList(ctx, domain.EducationTertiary, payload.TertiaryEducations, cred)
		failures = append(failures, fs...)
		if err := allChildrenFailed("tertiaryEducations", payload.TertiaryEducations, ids, fs); err != nil {
			return nil, nil, failures, err
		}
		data["tertiaryEducations"] = ids
		childIDs["tertiaryEducations"] = ids
	}

	// shared skills, deduplicated by the (skillName, level) natural key
	if payload.Skills != nil {
		ids, fs := u.resolveSkills(ctx, payload.Skills, cred)
		failures = append(failures, fs...)
		if err := allChildrenFailed("skills", payload.Skills, ids, fs); err != nil {
			return nil, nil, failures, err
		}
		data["skills"] = ids
		childIDs["skills"] = ids
	}

	// list-valued experience relations
	for _, rel := range []struct {
		field  string
		kind   domain.ExperienceKind
		inputs []domain.ExperienceInput
	}{
		{"experiences", domain.ExperienceWork, payload.Experiences},
		{"professionalExperiences", domain.ExperienceProfessional, payload.ProfessionalExperiences},
		{"researchEngagements", domain.ExperienceResearch, payload.ResearchEngagements},
	} {
		if rel.inputs == nil {
			continue
		}
		ids, fs := u.resolveExperienceList(ctx, rel.field, rel.kind, rel.inputs, cred)
		failures = append(failures, fs...)
		if err := allChildrenFailed(rel.field, rel.inputs, ids, fs); err != nil {
			return nil, nil, failures, err
		}
		data[rel.field] = ids
		childIDs[rel.field] = ids
	}

	return data, childIDs, failures, nil
}

// resolveSkills reuses an existing shared skill when one matches the natural
// key and only creates when none does. Skill records are shared across
// profiles and are never mutated here.
func (u *profileUsecase) resolveSkills(ctx context.Context, inputs []domain.SkillInput, cred domain.Credential) ([]int64, []domain.ChildFailure) {
	ids := make([]int64, 0, len(inputs))
	var failures []domain.ChildFailure

	for _, in := range inputs {
		if in.ID != nil {
			ids = append(ids, *in.ID)
			continue
		}

		ref, err := u.skills.FindByNameAndLevel(ctx, in.SkillName, in.Level, cred)
		if err == nil && ref == nil {
			ref, err = u.skills.Create(ctx, in, cred)
		}
		if err != nil {
			failures = append(failures, domain.ChildFailure{
				Relation: "skills",
				Name:     fmt.Sprintf("%s (%s)", in.SkillName, in.Level),
				Reason:   err.Error(),
			})
			continue
		}
		ids = append(ids, ref.ID)
	}
	return dedupe(ids), failures
}

// resolveSingularEducation reuses the profile's existing record for the kind
// when the submission carries no identifier; primary/secondary education is
// one-per-profile, so the profile itself is the natural key.
func (u *profileUsecase) resolveSingularEducation(ctx context.Context, kind domain.EducationKind, in domain.EducationInput, existingID *int64, cred domain.Credential) (*domain.EntityRef, *domain.ChildFailure) {
	var ref *domain.EntityRef
	var err error

	switch {
	case in.ID != nil:
		ref, err = u.educations.Update(ctx, kind, *in.ID, in, cred)
	case existingID != nil:
		ref, err = u.educations.Update(ctx, kind, *existingID, in, cred)
	default:
		ref, err = u.educations.Create(ctx, kind, in, cred)
	}

	if err != nil {
		return nil, &domain.ChildFailure{
			Relation: string(kind) + "Education",
			Name:     in.SchoolName,
			Reason:   err.Error(),
		}
	}
	return ref, nil
}

func (u *profileUsecase) resolveEducationList(ctx context.Context, kind domain.EducationKind, inputs []domain.EducationInput, cred domain.Credential) ([]int64, []domain.ChildFailure) {
	ids := make([]int64, 0, len(inputs))
	var failures []domain.ChildFailure

	for _, in := range inputs {
		var ref *domain.EntityRef
		var err error
		if in.ID != nil {
			ref, err = u.educations.Update(ctx, kind, *in.ID, in, cred)
		} else {
			ref, err = u.educations.Create(ctx, kind, in, cred)
		}
		if err != nil {
			failures = append(failures, domain.ChildFailure{
				Relation: "tertiaryEducations",
				Name:     in.SchoolName,
				Reason:   err.Error(),
			})
			continue
		}
		ids = append(ids, ref.ID)
	}
	return ids, failures
}

func (u *profileUsecase) resolveExperienceList(ctx context.Context, relation string, kind domain.ExperienceKind, inputs []domain.ExperienceInput, cred domain.Credential) ([]int64, []domain.ChildFailure) {
	ids := make([]int64, 0, len(inputs))
	var failures []domain.ChildFailure

	for _, in := range inputs {
		var ref *domain.EntityRef
		var err error
		if in.ID != nil {
			ref, err = u.experiences.Update(ctx, kind, *in.ID, in, cred)
		} else {
			ref, err = u.experiences.Create(ctx, kind, in, cred)
		}
		if err != nil {
			failures = append(failures, domain.ChildFailure{
				Relation: relation,
				Name:     in.Title,
				Reason:   err.Error(),
			})
			continue
		}
		ids = append(ids, ref.ID)
	}
	return ids, failures
}

// cleanAddress prepares an embedded component for the write body. The
// component id must be absent on create and present on update (reusing the
// previously-known id when the client omits it), and location relations go
// out as bare numeric foreign keys only.
func cleanAddress(in *domain.Address, existing *domain.Address, forCreate bool) map[string]any {
	m := map[string]any{}

	if !forCreate {
		switch {
		case in.ID != nil:
			m["id"] = *in.ID
		case existing != nil && existing.ID != nil:
			m["id"] = *existing.ID
		}
	}

	if in.Street != "" {
		m["street"] = in.Street
	}
	if in.City != "" {
		m["city"] = in.City
	}
	if in.Kebele != "" {
		m["kebele"] = in.Kebele
	}
	if in.HouseNumber != "" {
		m["houseNumber"] = in.HouseNumber
	}
	if in.PhoneNumber != "" {
		m["phoneNumber"] = in.PhoneNumber
	}
	if in.FullName != "" {
		m["fullName"] = in.FullName
	}
	if in.Country != nil {
		m["country"] = *in.Country
	}
	if in.Region != nil {
		m["region"] = *in.Region
	}
	if in.Zone != nil {
		m["zone"] = *in.Zone
	}
	if in.Woreda != nil {
		m["woreda"] = *in.Woreda
	}
	return m
}

// allChildrenFailed guards against an explicitly submitted relation being
// silently cleared because every child write failed: the parent write is
// aborted with an aggregate error naming the failed children instead.
func allChildrenFailed[T any](relation string, inputs []T, resolved []int64, failures []domain.ChildFailure) error {
	if len(inputs) == 0 || len(resolved) > 0 || len(failures) == 0 {
		return nil
	}
	names := make([]string, 0, len(failures))
	for _, f := range failures {
		names = append(names, f.Name)
	}
	return apperror.New(http.StatusBadGateway,
		fmt.Sprintf("All %s could not be saved (%s); profile not updated to avoid clearing the relation", relation, strings.Join(names, ", ")),
		nil)
}

func setString(data map[string]any, key string, val *string) {
	if val != nil {
		data[key] = *val
	}
}

func addrOrNil(p *domain.Profile, pick func(*domain.Profile) *domain.Address) *domain.Address {
	if p == nil {
		return nil
	}
	return pick(p)
}

func eduID(p *domain.Profile, pick func(*domain.Profile) *domain.Education) *int64 {
	if p == nil {
		return nil
	}
	edu := pick(p)
	if edu == nil || edu.ID == 0 {
		return nil
	}
	id := edu.ID
	return &id
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
