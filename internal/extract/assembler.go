package extract

import (
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/jobcrawl/internal/document"
	"github.com/nao1215/jobcrawl/internal/model"
)

// Default values filled into every record.
const (
	DefaultRegionTag    = "Costa Rica"
	DefaultDeadlineDays = 30
)

// dateLayout is the format of expiry and deadline dates.
const dateLayout = "2006-01-02"

// Assembler composes every field into a JobRecord.
//
// An Assembler is immutable after construction and safe for concurrent use
// by detail-page workers.
type Assembler struct {
	regionTag string
	deadline  string
	logger    *slog.Logger
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*assemblerConfig)

type assemblerConfig struct {
	regionTag    string
	deadlineDays int
	start        time.Time
	logger       *slog.Logger
}

// WithRegionTag sets the region tag written into every record.
func WithRegionTag(tag string) AssemblerOption {
	return func(c *assemblerConfig) {
		c.regionTag = tag
	}
}

// WithDeadlineDays sets how many days after the crawl start the expiry and
// application deadline dates fall.
func WithDeadlineDays(days int) AssemblerOption {
	return func(c *assemblerConfig) {
		c.deadlineDays = days
	}
}

// WithStartTime sets the crawl start used for date defaults.
func WithStartTime(t time.Time) AssemblerOption {
	return func(c *assemblerConfig) {
		c.start = t
	}
}

// WithLogger sets the logger used for rule failures.
func WithLogger(logger *slog.Logger) AssemblerOption {
	return func(c *assemblerConfig) {
		c.logger = logger
	}
}

// NewAssembler creates an Assembler. The deadline date is computed once
// here so every record of a crawl carries the same value.
func NewAssembler(opts ...AssemblerOption) *Assembler {
	cfg := &assemblerConfig{
		regionTag:    DefaultRegionTag,
		deadlineDays: DefaultDeadlineDays,
		start:        time.Now(),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var deadline string
	if cfg.deadlineDays > 0 {
		deadline = cfg.start.AddDate(0, 0, cfg.deadlineDays).Format(dateLayout)
	}
	return &Assembler{
		regionTag: cfg.regionTag,
		deadline:  deadline,
		logger:    cfg.logger,
	}
}

// Assemble extracts a record from a detail page. card is the listing card
// that linked to the page, or the zero Node. The result always carries
// sourceURL, even when every field is absent.
func (a *Assembler) Assemble(doc *document.Document, card document.Node, sourceURL string) model.JobRecord {
	in := Input{Doc: doc, Card: card}
	if in.Doc == nil {
		in.Doc = &document.Document{}
	}
	if u, err := url.Parse(strings.TrimSpace(sourceURL)); err == nil && u.IsAbs() {
		in.PageURL = u
	}

	rec := model.JobRecord{
		SourceURL:         sourceURL,
		Title:             titleField.Extract(in, a.logger),
		Company:           companyField.Extract(in, a.logger),
		FeaturedImageURL:  featuredImageField.Extract(in, a.logger),
		IsFeatured:        featuredField.Extract(in, a.logger),
		IsFilled:          filledField.Extract(in, a.logger),
		IsUrgent:          urgentField.Extract(in, a.logger),
		Description:       descriptionField.Extract(in, a.logger),
		Category:          categoryField.Extract(in, a.logger),
		EmploymentType:    employmentTypeField.Extract(in, a.logger),
		RegionTag:         a.regionTag,
		ExpiryDate:        a.deadline,
		GenderRequirement: genderField.Extract(in, a.logger),
		ApplyEmail:        applyEmailField.Extract(in, a.logger),
		Experience:        experienceField.Extract(in, a.logger),
		CareerLevel:       careerLevelField.Extract(in, a.logger),
		Qualification:     qualificationField.Extract(in, a.logger),
		VideoURL:          videoField.Extract(in, a.logger),
		PhotoURLs:         photosField.Extract(in, a.logger),
		MapURL:            mapField.Extract(in, a.logger),
		PostedDate:        postedDateField.Extract(in, a.logger),

		ApplicationDeadlineDate: a.deadline,
	}

	if ap := applyField.Extract(in, a.logger); ap.URL != "" {
		rec.ApplyType, rec.ApplyURL = ap.Type, ap.URL
	} else {
		rec.ApplyType, rec.ApplyURL = model.ApplyExternal, sourceURL
	}

	if s := salaryField.Extract(in, a.logger); s.Min != "" {
		rec.SalaryMin, rec.SalaryMax, rec.SalaryType = s.Min, s.Max, s.Type
	}

	rec.Address = addressField.Extract(in, a.logger)
	rec.Location = rec.Address

	rec.Normalize()
	if rec.ApplyType == model.ApplyExternal && rec.ApplyURL == "" {
		rec.ApplyType = ""
	}
	return rec
}
