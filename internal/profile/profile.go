// Package profile holds the candidate profile model consumed by the skill
// extractor: nine named sections whose content is text, a list or an object.
package profile

// SectionName identifies a profile section.
type SectionName string

const (
	SectionJobTitle         SectionName = "jobTitle"
	SectionSummary          SectionName = "summary"
	SectionPrimarySkills    SectionName = "primarySkills"
	SectionCurrentRole      SectionName = "currentRole"
	SectionRecentExperience SectionName = "recentExperience"
	SectionPreviousRoles    SectionName = "previousRoles"
	SectionAdditionalSkills SectionName = "additionalSkills"
	SectionEducation        SectionName = "education"
	SectionCertifications   SectionName = "certifications"
)

// SectionOrder is the order in which sections are scanned.
var SectionOrder = []SectionName{
	SectionJobTitle,
	SectionSummary,
	SectionPrimarySkills,
	SectionCurrentRole,
	SectionRecentExperience,
	SectionPreviousRoles,
	SectionAdditionalSkills,
	SectionEducation,
	SectionCertifications,
}

// Profile is a candidate profile split into weighted sections. Missing
// sections stay empty.
type Profile struct {
	JobTitle         Content `json:"jobTitle,omitempty" yaml:"jobTitle"`
	Summary          Content `json:"summary,omitempty" yaml:"summary"`
	PrimarySkills    Content `json:"primarySkills,omitempty" yaml:"primarySkills"`
	CurrentRole      Content `json:"currentRole,omitempty" yaml:"currentRole"`
	RecentExperience Content `json:"recentExperience,omitempty" yaml:"recentExperience"`
	PreviousRoles    Content `json:"previousRoles,omitempty" yaml:"previousRoles"`
	AdditionalSkills Content `json:"additionalSkills,omitempty" yaml:"additionalSkills"`
	Education        Content `json:"education,omitempty" yaml:"education"`
	Certifications   Content `json:"certifications,omitempty" yaml:"certifications"`
}

// Section is one named section of a profile.
type Section struct {
	Name    SectionName
	Content Content
}

// Sections returns all sections in scan order, including empty ones.
func (p *Profile) Sections() []Section {
	if p == nil {
		p = &Profile{}
	}

	return []Section{
		{Name: SectionJobTitle, Content: p.JobTitle},
		{Name: SectionSummary, Content: p.Summary},
		{Name: SectionPrimarySkills, Content: p.PrimarySkills},
		{Name: SectionCurrentRole, Content: p.CurrentRole},
		{Name: SectionRecentExperience, Content: p.RecentExperience},
		{Name: SectionPreviousRoles, Content: p.PreviousRoles},
		{Name: SectionAdditionalSkills, Content: p.AdditionalSkills},
		{Name: SectionEducation, Content: p.Education},
		{Name: SectionCertifications, Content: p.Certifications},
	}
}

// IsEmpty reports whether every section is empty.
func (p *Profile) IsEmpty() bool {
	for _, s := range p.Sections() {
		if !s.Content.IsEmpty() {
			return false
		}
	}
	return true
}
