package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-friendly labels
var FieldLabels = map[string]string{
	"FullName":           "Full Name",
	"Gender":             "Gender",
	"DateOfBirth":        "Date of Birth",
	"PhoneNumber":        "Phone Number",
	"Bio":                "Bio",
	"Status":             "Profile Status",
	"SkillName":          "Skill Name",
	"Level":              "Skill Level",
	"SchoolName":         "School Name",
	"FieldOfStudy":       "Field of Study",
	"StartYear":          "Start Year",
	"EndYear":            "End Year",
	"Organization":       "Organization",
	"Title":              "Title",
	"StartDate":          "Start Date",
	"EndDate":            "End Date",
	"Description":        "Description",
	"Street":             "Street",
	"City":               "City",
	"Country":            "Country",
	"Region":             "Region",
	"Zone":               "Zone",
	"Woreda":             "Woreda",
	"CompanyName":        "Company Name",
	"Industry":           "Industry",
	"Website":            "Website",
	"Email":              "Email",
	"Name":               "Name",
	"Subject":            "Subject",
	"Message":            "Message",
}

func label(field string) string {
	if l, ok := FieldLabels[field]; ok {
		return l
	}
	return field
}

// Translate converts validator errors into readable messages keyed by field
// label, suitable for direct display next to form inputs.
func Translate(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, message(fe))
	}
	return strings.Join(msgs, "; ")
}

func message(fe validator.FieldError) string {
	l := label(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", l)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", l, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", l, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", l)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", l)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", l, fe.Param())
	case "valid_name":
		return fmt.Sprintf("%s contains invalid characters", l)
	case "valid_phone":
		return fmt.Sprintf("%s is not a valid phone number", l)
	case "no_emoji":
		return fmt.Sprintf("%s must not contain emoji", l)
	case "max_current_year":
		return fmt.Sprintf("%s cannot be in the future", l)
	default:
		return fmt.Sprintf("%s is invalid (%s)", l, fe.Tag())
	}
}
