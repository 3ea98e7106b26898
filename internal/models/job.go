package models

// JobURLs is what the model returns for one listing page.
// A nil URLs slice means the model reported null, which is different from an empty list.
type JobURLs struct {
	URLs []string `json:"urls" jsonschema:"List of job_url"`
}

// JobInformation is the record extracted from a single job detail page.
// Every field is nullable: the model sets null when it cannot find the value.
type JobInformation struct {
	JobDescription *string `json:"job_description" jsonschema:"Job description"`
	JobTitle       *string `json:"job_title" jsonschema:"Job title"`
	CompanyName    *string `json:"company_name" jsonschema:"Job company"`
	CompanyWebsite *string `json:"company_website" jsonschema:"Job company website"`
	ApplyURL       *string `json:"apply_url" jsonschema:"Job url"`
}

// Value dereferences an optional field, returning "" for null
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
