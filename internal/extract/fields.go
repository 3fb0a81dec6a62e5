package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nao1215/jobcrawl/internal/document"
	"github.com/nao1215/jobcrawl/internal/model"
)

var (
	logoMarker   = regexp.MustCompile(`(?i)logo`)
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	mailtoHref   = regexp.MustCompile(`(?i)^mailto:`)
	httpScheme   = regexp.MustCompile(`(?i)^(https?:)?//`)
	dashSuffix   = regexp.MustCompile(`\s*-.*$`)
	titleSplit   = regexp.MustCompile(`(?i)\s+(?:-|/|en|para)\s+`)
	sidebarClass = regexp.MustCompile(`(?i)^(box-new|right|side(bar)?|panel)`)
	badgeClass   = regexp.MustCompile(`(?i)badge|tag|label`)

	employmentType = regexp.MustCompile(`(?i)tiempo completo|medio tiempo|temporal|por horas|remoto|full time|part time`)
	contractType   = regexp.MustCompile(`(?i)contrato por tiempo indefinido|contrato temporal|contrato por obra`)
	genderPattern  = regexp.MustCompile(`(?i)\b(hombres|mujeres|indistinto)\b`)
	careerPattern  = regexp.MustCompile(`(?i)\b(junior|senior|gerencial|practicante|trainee)\b`)
	yearsPattern   = regexp.MustCompile(`(?i)\d+\s*años?.*de experiencia`)
	requirements   = regexp.MustCompile(`(?i)requerimientos|requisitos`)
	experienceWord = regexp.MustCompile(`(?i)experiencia`)
	educationText  = regexp.MustCompile(`(?i)educación mínima|bachillerato|universidad|educación media|técnico`)
	postedAgo      = regexp.MustCompile(`(?i)\bhace\s+(?:\d+|un|una)\s+(?:minutos?|horas?|d[ií]as?|semanas?|mes(?:es)?)\b|\b(?:hoy|ayer)\b`)
	filledText     = regexp.MustCompile(`(?i)cubierta|ocupada|cerrada|filled|closed`)
	videoHost      = regexp.MustCompile(`(?i)youtube|vimeo`)
	mapLink        = regexp.MustCompile(`(?i)maps\.google|goo\.gl/maps|maps\.app\.goo\.gl|google\.[a-z.]+/maps`)
	latitude       = regexp.MustCompile(`(?i)["']?lat(?:itude)?["']?\s*[:=]\s*["']?(-?\d{1,3}\.\d+)`)
	longitude      = regexp.MustCompile(`(?i)["']?(?:lng|lon|longitude)["']?\s*[:=]\s*["']?(-?\d{1,3}\.\d+)`)

	categoryLabel   = labelPattern(`categor[ií]a`, `[áa]rea`)
	employmentLabel = labelPattern(`tipo de contrato`, `jornada`, `tipo`)
	experienceLabel = labelPattern(`experiencia`)
	educationLabel  = labelPattern(`estudios`, `educaci[óo]n`)
	postedLabel     = labelPattern(`publicad[oa]`)
	locationLabel   = labelPattern(`ubicaci[óo]n`, `localidad`)
)

// maxShortText bounds text nodes returned whole; longer nodes yield only
// the matched phrase.
const maxShortText = 60

// maxCategoryLen is the longest heading accepted as a category.
const maxCategoryLen = 100

// textOrMatch returns the text node when it is short, else the phrase re
// matched inside it.
func textOrMatch(text string, re *regexp.Regexp) string {
	if len([]rune(text)) <= maxShortText {
		return text
	}
	return re.FindString(text)
}

// findText picks the first text node in the document matching re.
func findText(re *regexp.Regexp) func(in Input) (string, bool) {
	return func(in Input) (string, bool) {
		m, ok := in.Doc.FindText(re)
		if !ok {
			return "", false
		}
		return textOrMatch(m.Text, re), true
	}
}

// nodeText picks the text of the first element matching c in the
// document.
func nodeText(c document.Criteria) func(in Input) (string, bool) {
	return func(in Input) (string, bool) {
		n, ok := in.Doc.Find(c)
		if !ok {
			return "", false
		}
		return n.Text(), true
	}
}

// nodeAttr picks an attribute of the first element matching c, resolved
// against the page URL.
func nodeAttr(c document.Criteria, attr string) func(in Input) (string, bool) {
	return func(in Input) (string, bool) {
		n, ok := in.Doc.Find(c)
		if !ok {
			return "", false
		}
		v, ok := n.Attr(attr)
		if !ok {
			return "", false
		}
		return in.Resolve(v), true
	}
}

func cardText(c document.Criteria) func(in Input) (string, bool) {
	return func(in Input) (string, bool) {
		n, ok := in.Card.Find(c)
		if !ok {
			return "", false
		}
		return n.Text(), true
	}
}

var titleField = Field[string]{Name: "title", Rules: []Rule[string]{
	Text("heading", nodeText(document.Tag("h1"))),
	Text("card heading", cardText(document.Tag("h2", "h3", "a"))),
}}

var companyField = Field[string]{Name: "company", Rules: []Rule[string]{
	Text("company link", nodeText(document.Criteria{Tags: []string{"a", "p", "span"}, ClassPattern: regexp.MustCompile(`(?i)^(fc_base|company|empresa)`)})),
	Text("card company", cardText(document.Criteria{Tags: []string{"a", "p", "span"}, ClassPattern: regexp.MustCompile(`(?i)^(fc_base|company|empresa|it-blank)`)})),
}}

var featuredImageField = Field[string]{Name: "featured_image_url", Rules: []Rule[string]{
	Text("logo class", nodeAttr(document.Criteria{Tags: []string{"img"}, ClassPattern: regexp.MustCompile(`(?i)logo|company`)}, "src")),
	Text("logo alt", nodeAttr(document.Criteria{Tags: []string{"img"}, Attr: "alt", AttrPattern: regexp.MustCompile(`(?i)logo|empresa`)}, "src")),
	Text("open graph", nodeAttr(document.Criteria{Tags: []string{"meta"}, Attr: "property", AttrPattern: regexp.MustCompile(`^og:image$`)}, "content")),
}}

// badges returns the text of badge-like elements in the document.
func badges(in Input) []string {
	var out []string
	for _, n := range in.Doc.FindAll(document.Criteria{Tags: []string{"span", "div", "p"}, ClassPattern: badgeClass}) {
		out = append(out, n.Text())
	}
	return out
}

func badgeContains(subs ...string) func(in Input) bool {
	return func(in Input) bool {
		for _, b := range badges(in) {
			if containsFold(b, subs...) {
				return true
			}
		}
		return false
	}
}

func cardContains(subs ...string) func(in Input) bool {
	return func(in Input) bool {
		if in.Card.IsZero() {
			return false
		}
		return containsFold(in.Card.HTML(), subs...)
	}
}

var featuredField = Field[bool]{Name: "is_featured", Rules: []Rule[bool]{
	Flag("card marker", cardContains("destacad", "featured")),
	Flag("badge", badgeContains("destacad", "featured")),
}}

var urgentField = Field[bool]{Name: "is_urgent", Rules: []Rule[bool]{
	Flag("card marker", func(in Input) bool {
		return !in.Card.IsZero() && containsFold(in.Card.Text(), "urgente", "urgent")
	}),
	Flag("badge", badgeContains("urgente", "urgent")),
}}

var filledField = Field[bool]{Name: "is_filled", Rules: []Rule[bool]{
	Flag("page text", func(in Input) bool {
		_, ok := in.Doc.FindText(filledText)
		return ok
	}),
	Flag("badge", badgeContains("cubierta", "cerrada", "filled", "closed")),
}}

var descriptionField = Field[string]{Name: "description", Rules: []Rule[string]{
	{Name: "labeled section", Apply: labeledDescription},
	{Name: "longest paragraph", Apply: longestParagraph},
}}

// sidebarCategory reads the first heading of a sidebar container.
func sidebarCategory(in Input) (string, bool) {
	box, ok := in.Doc.Find(document.Criteria{Tags: []string{"div"}, ClassPattern: sidebarClass})
	if !ok {
		return "", false
	}
	h, ok := box.Find(document.Tag("h2", "h3", "h4"))
	if !ok {
		return "", false
	}
	return h.Text(), true
}

// regionHeading walks from the first region mention back to the nearest
// heading.
func regionHeading(in Input) (string, bool) {
	m, ok := in.Doc.FindText(regionText)
	if !ok {
		return "", false
	}
	box, ok := m.Parent.Ancestor("div", "section")
	if !ok {
		box = m.Parent
	}
	h, ok := box.Preceding(document.Tag("h2", "h3", "h4"))
	if !ok {
		h, ok = box.Find(document.Tag("h2", "h3", "h4"))
	}
	if !ok {
		return "", false
	}
	return h.Text(), true
}

var categoryField = Field[string]{Name: "category", Rules: []Rule[string]{
	Text("sidebar heading", sidebarCategory, Strip(dashSuffix), MaxLen(maxCategoryLen)),
	Text("labeled", labeled(categoryLabel), MaxLen(maxCategoryLen)),
	Text("region heading", regionHeading, MaxLen(maxCategoryLen)),
	Text("title prefix", nodeText(document.Tag("h1")), Before(titleSplit)),
}}

var employmentTypeField = Field[string]{Name: "employment_type", Rules: []Rule[string]{
	Text("schedule", findText(employmentType)),
	Text("contract", findText(contractType)),
	Text("labeled", labeled(employmentLabel)),
}}

var genderField = Field[string]{Name: "gender_requirement", Rules: []Rule[string]{
	Text("gender", findText(genderPattern)),
}}

// applyControl is the explicit apply button on a detail page.
var applyControl = document.Criteria{
	Tags:         []string{"a"},
	ClassPattern: regexp.MustCompile(`(?i)btn_application|apply|aplicar|postular`),
	Attr:         "href",
}

// apply is the apply type and URL pair.
type apply struct {
	Type model.ApplyType
	URL  string
}

var applyField = Field[apply]{Name: "apply", Rules: []Rule[apply]{
	{Name: "apply control", Apply: func(in Input) (apply, bool) {
		n, ok := in.Doc.Find(applyControl)
		if !ok {
			return apply{}, false
		}
		href, _ := n.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || href == "#" || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return apply{}, false
		}
		t := model.ApplyInternal
		if httpScheme.MatchString(href) {
			t = model.ApplyExternal
		}
		return apply{Type: t, URL: in.Resolve(href)}, true
	}},
}}

// applyEmailField takes the first address in the page text. A mailto link
// only counts when no address is visible.
var applyEmailField = Field[string]{Name: "apply_email", Rules: []Rule[string]{
	Text("page text", func(in Input) (string, bool) {
		m := emailPattern.FindString(in.Doc.Text())
		return m, m != ""
	}),
	Text("mailto", func(in Input) (string, bool) {
		n, ok := in.Doc.Find(document.Criteria{Tags: []string{"a"}, Attr: "href", AttrPattern: mailtoHref})
		if !ok {
			return "", false
		}
		href, _ := n.Attr("href")
		addr := href[len("mailto:"):]
		if i := strings.IndexByte(addr, '?'); i >= 0 {
			addr = addr[:i]
		}
		return addr, true
	}),
}}

var salaryField = Field[Salary]{Name: "salary", Rules: []Rule[Salary]{
	{Name: "page text", Apply: func(in Input) (Salary, bool) {
		m, ok := in.Doc.FindText(salaryText)
		if !ok {
			return Salary{}, false
		}
		s := ParseSalary(m.Text)
		return s, s.Min != ""
	}},
	{Name: "card text", Apply: func(in Input) (Salary, bool) {
		m, ok := in.Card.FindText(salaryText)
		if !ok {
			return Salary{}, false
		}
		s := ParseSalary(m.Text)
		return s, s.Min != ""
	}},
}}

// requirementExperience looks for an experience line next to the
// requirements header.
func requirementExperience(in Input) (string, bool) {
	m, ok := in.Doc.FindText(requirements)
	if !ok {
		return "", false
	}
	if e, ok := m.Parent.FindText(experienceWord); ok {
		return e.Text, true
	}
	if list, ok := m.Parent.Following(document.Tag("ul", "ol")); ok {
		if e, ok := list.FindText(experienceWord); ok {
			return e.Text, true
		}
	}
	return "", false
}

var experienceField = Field[string]{Name: "experience", Rules: []Rule[string]{
	Text("years", findText(yearsPattern)),
	Text("requirements", requirementExperience),
	Text("labeled", labeled(experienceLabel)),
}}

var careerLevelField = Field[string]{Name: "career_level", Rules: []Rule[string]{
	Text("level", findText(careerPattern)),
}}

var qualificationField = Field[string]{Name: "qualification", Rules: []Rule[string]{
	Text("education", func(in Input) (string, bool) {
		m, ok := in.Doc.FindText(educationText)
		if !ok {
			return "", false
		}
		return m.Parent.Text(), true
	}, MaxLen(200)),
	Text("labeled", labeled(educationLabel)),
}}

var videoField = Field[string]{Name: "video_url", Rules: []Rule[string]{
	Text("embed", nodeAttr(document.Criteria{Tags: []string{"iframe"}, Attr: "src", AttrPattern: videoHost}, "src")),
}}

// isLogo reports whether an image is marked as a logo by its source,
// class or alt text.
func isLogo(img document.Node) bool {
	for _, name := range []string{"src", "class", "alt"} {
		if v, ok := img.Attr(name); ok && logoMarker.MatchString(v) {
			return true
		}
	}
	return false
}

var photosField = Field[[]string]{Name: "photo_urls", Rules: []Rule[[]string]{
	{Name: "gallery", Apply: func(in Input) ([]string, bool) {
		var out []string
		for _, img := range in.Doc.FindAll(document.Criteria{Tags: []string{"img"}, ClassPattern: regexp.MustCompile(`(?i)gallery|photo`)}) {
			if isLogo(img) {
				continue
			}
			if src, ok := img.Attr("src"); ok && strings.TrimSpace(src) != "" {
				out = append(out, in.Resolve(src))
			}
		}
		return out, len(out) > 0
	}},
}}

var mapField = Field[string]{Name: "map_url", Rules: []Rule[string]{
	Text("maps link", nodeAttr(document.Criteria{Tags: []string{"a"}, Attr: "href", AttrPattern: mapLink}, "href")),
	Text("maps embed", nodeAttr(document.Criteria{Tags: []string{"iframe"}, Attr: "src", AttrPattern: mapLink}, "src")),
	Text("script coordinates", func(in Input) (string, bool) {
		for _, s := range in.Doc.FindAll(document.Tag("script")) {
			body := s.OwnText()
			lat, lng := latitude.FindStringSubmatch(body), longitude.FindStringSubmatch(body)
			if lat != nil && lng != nil {
				return fmt.Sprintf("https://www.google.com/maps?q=%s,%s", lat[1], lng[1]), true
			}
		}
		return "", false
	}),
}}

var postedDateField = Field[string]{Name: "posted_date", Rules: []Rule[string]{
	Text("labeled", labeled(postedLabel)),
	Text("relative", func(in Input) (string, bool) {
		m, ok := in.Doc.FindText(postedAgo)
		if !ok {
			return "", false
		}
		return postedAgo.FindString(m.Text), true
	}),
}}

// localityRule wraps a picker with NormalizeLocality.
func localityRule(name string, pick func(in Input) (string, bool)) Rule[string] {
	return Text(name, pick, NormalizeLocality)
}

var addressField = Field[string]{Name: "address", Rules: []Rule[string]{
	localityRule("location paragraph", func(in Input) (string, bool) {
		p, ok := in.Doc.Find(document.Criteria{Tags: []string{"p"}, Class: "fs16"})
		if !ok {
			return "", false
		}
		t := p.Text()
		return t, regionText.MatchString(t)
	}),
	localityRule("card text", func(in Input) (string, bool) {
		m, ok := in.Card.FindText(regionText)
		if !ok {
			return "", false
		}
		return m.Text, true
	}),
	localityRule("labeled", labeled(locationLabel)),
}}
