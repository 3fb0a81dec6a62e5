package model

import (
	"reflect"
	"slices"
	"strings"
)

// ApplyType describes how a candidate applies to a job posting.
type ApplyType string

const (
	// ApplyInternal means the application form is hosted on the listing site.
	ApplyInternal ApplyType = "internal"

	// ApplyExternal means the candidate is sent to another site.
	ApplyExternal ApplyType = "external"
)

// JobRecord is the output unit of a crawl: one job posting.
//
// Every field is optional. The zero value of a field is its null value;
// JSON output omits null strings so records with a sparse schema stay
// compact. Boolean flags are always emitted.
type JobRecord struct {
	// SourceURL is the detail page the record was extracted from.
	// It is the only field that is always present.
	SourceURL string `json:"source_url"`

	Title            string `json:"title,omitempty"`
	Company          string `json:"company,omitempty"`
	FeaturedImageURL string `json:"featured_image_url,omitempty"`

	IsFeatured bool `json:"is_featured"`
	IsFilled   bool `json:"is_filled"`
	IsUrgent   bool `json:"is_urgent"`

	Description       string `json:"description,omitempty"`
	Category          string `json:"category,omitempty"`
	EmploymentType    string `json:"employment_type,omitempty"`
	RegionTag         string `json:"region_tag,omitempty"`
	ExpiryDate        string `json:"expiry_date,omitempty"`
	GenderRequirement string `json:"gender_requirement,omitempty"`

	ApplyType  ApplyType `json:"apply_type,omitempty"`
	ApplyURL   string    `json:"apply_url,omitempty"`
	ApplyEmail string    `json:"apply_email,omitempty"`

	SalaryType string `json:"salary_type,omitempty"`
	SalaryMin  string `json:"salary_min,omitempty"`
	// SalaryMax is set only when a salary range was detected.
	SalaryMax string `json:"salary_max,omitempty"`

	Experience    string `json:"experience,omitempty"`
	CareerLevel   string `json:"career_level,omitempty"`
	Qualification string `json:"qualification,omitempty"`
	VideoURL      string `json:"video_url,omitempty"`

	// PhotoURLs is ordered and contains no duplicates and no logos.
	PhotoURLs []string `json:"photo_urls,omitempty"`

	ApplicationDeadlineDate string `json:"application_deadline_date,omitempty"`
	Address                 string `json:"address,omitempty"`
	Location                string `json:"location,omitempty"`
	MapURL                  string `json:"map_url,omitempty"`
	PostedDate              string `json:"posted_date,omitempty"`
}

// Normalize trims every string field and removes duplicate or empty photo
// URLs while keeping first-seen order. Whitespace-only strings become null.
func (j *JobRecord) Normalize() {
	for _, f := range j.stringFields() {
		*f = strings.TrimSpace(*f)
	}
	j.ApplyType = ApplyType(strings.TrimSpace(string(j.ApplyType)))

	if len(j.PhotoURLs) == 0 {
		j.PhotoURLs = nil
		return
	}
	seen := make(map[string]bool, len(j.PhotoURLs))
	photos := make([]string, 0, len(j.PhotoURLs))
	for _, p := range j.PhotoURLs {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		photos = append(photos, p)
	}
	if len(photos) == 0 {
		photos = nil
	}
	j.PhotoURLs = photos
}

// Fields returns the record as a flat column map for tabular sinks.
// Null strings are omitted; booleans are rendered as "1" or "0" and photo
// URLs are joined with a comma.
func (j *JobRecord) Fields() map[string]string {
	out := map[string]string{
		"source_url":  j.SourceURL,
		"is_featured": boolFlag(j.IsFeatured),
		"is_filled":   boolFlag(j.IsFilled),
		"is_urgent":   boolFlag(j.IsUrgent),
	}
	set := func(key, value string) {
		if value != "" {
			out[key] = value
		}
	}
	set("title", j.Title)
	set("company", j.Company)
	set("featured_image_url", j.FeaturedImageURL)
	set("description", j.Description)
	set("category", j.Category)
	set("employment_type", j.EmploymentType)
	set("region_tag", j.RegionTag)
	set("expiry_date", j.ExpiryDate)
	set("gender_requirement", j.GenderRequirement)
	set("apply_type", string(j.ApplyType))
	set("apply_url", j.ApplyURL)
	set("apply_email", j.ApplyEmail)
	set("salary_type", j.SalaryType)
	set("salary_min", j.SalaryMin)
	set("salary_max", j.SalaryMax)
	set("experience", j.Experience)
	set("career_level", j.CareerLevel)
	set("qualification", j.Qualification)
	set("video_url", j.VideoURL)
	set("photo_urls", strings.Join(j.PhotoURLs, ","))
	set("application_deadline_date", j.ApplicationDeadlineDate)
	set("address", j.Address)
	set("location", j.Location)
	set("map_url", j.MapURL)
	set("posted_date", j.PostedDate)
	return out
}

// Equal reports whether two records carry the same values. A nil and an
// empty photo list are equal.
func (j *JobRecord) Equal(other *JobRecord) bool {
	if other == nil {
		return false
	}
	a, b := *j, *other
	a.PhotoURLs, b.PhotoURLs = nil, nil
	return reflect.DeepEqual(a, b) && slices.Equal(j.PhotoURLs, other.PhotoURLs)
}

func (j *JobRecord) stringFields() []*string {
	return []*string{
		&j.SourceURL, &j.Title, &j.Company, &j.FeaturedImageURL,
		&j.Description, &j.Category, &j.EmploymentType, &j.RegionTag,
		&j.ExpiryDate, &j.GenderRequirement, &j.ApplyURL, &j.ApplyEmail,
		&j.SalaryType, &j.SalaryMin, &j.SalaryMax, &j.Experience,
		&j.CareerLevel, &j.Qualification, &j.VideoURL,
		&j.ApplicationDeadlineDate, &j.Address, &j.Location, &j.MapURL,
		&j.PostedDate,
	}
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
