package extract

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/jobcrawl/internal/document"
)

const (
	// minDescriptionLen is the shortest cleaned description accepted.
	minDescriptionLen = 50

	// minParagraphLen is the shortest paragraph used as a fallback.
	minParagraphLen = 100

	// maxMetadataLen bounds elements removed for carrying metadata keywords.
	maxMetadataLen = 100
)

var (
	descriptionHeading = regexp.MustCompile(`(?i)descripci[oó]n de la oferta|descripci[oó]n del (puesto|empleo)`)

	// salaryNoise marks description sub-elements that only repeat the salary.
	salaryNoise = []*regexp.Regexp{
		regexp.MustCompile(`₡`),
		regexp.MustCompile(`\d{1,3}[\s,.]?\d{3}[\s,.]?\d{2,3}`),
		regexp.MustCompile(`(?i)\((mensual|anual|por hora)\)`),
		regexp.MustCompile(`(?i)\+ comisiones`),
		regexp.MustCompile(`(?i)a convenir`),
		regexp.MustCompile(`(?i)salario\s*:`),
	}

	metadataKeywords = []string{
		"Tiempo Completo",
		"Medio Tiempo",
		"Temporal",
		"Por horas",
		"Contrato por tiempo indefinido",
		"Contrato temporal",
		"Contrato por obra",
	}

	sectionKeywords = []string{
		"Requisitos:",
		"Requerimientos:",
		"Se ofrece:",
		"Ofrecemos:",
		"Aportar:",
		"Funciones:",
		"Responsabilidades:",
	}

	numberedItem   = regexp.MustCompile(`(^|\s+)(\d{1,2}\.)\s+`)
	bulletMarker   = regexp.MustCompile(`(^|\s+)[-•·]\s+`)
	sentenceEnd    = regexp.MustCompile(`([.!?])\s+([A-ZÁÉÍÓÚÑ¿¡])`)
	blankRuns      = regexp.MustCompile(`[ \t]+`)
	numberedPrefix = regexp.MustCompile(`^\d{1,2}\.\s*`)
	digitGroups    = regexp.MustCompile(`\d{3}[\s,.]\d{3}`)
	sectionPattern = func() *regexp.Regexp {
		quoted := make([]string, len(sectionKeywords))
		for i, kw := range sectionKeywords {
			quoted[i] = regexp.QuoteMeta(kw)
		}
		return regexp.MustCompile(`(?i)\s*(` + strings.Join(quoted, "|") + `)`)
	}()
)

// labeledDescription cleans the block following the description heading.
func labeledDescription(in Input) (string, bool) {
	heading, ok := in.Doc.Find(document.Criteria{
		Tags: []string{"h2", "h3"},
		Text: descriptionHeading,
	})
	if !ok {
		return "", false
	}
	block, ok := heading.Following(document.Tag("div"))
	if !ok {
		return "", false
	}
	text := CleanDescription(block)
	if utf8.RuneCountInString(text) < minDescriptionLen {
		return "", false
	}
	return text, true
}

// longestParagraph is the fallback description: the longest paragraph
// that carries no salary figures.
func longestParagraph(in Input) (string, bool) {
	best := ""
	for _, p := range in.Doc.FindAll(document.Tag("p")) {
		t := p.Text()
		if utf8.RuneCountInString(t) <= minParagraphLen {
			continue
		}
		if strings.Contains(t, "₡") || digitGroups.MatchString(t) {
			continue
		}
		if len(t) > len(best) {
			best = t
		}
	}
	if best == "" {
		return "", false
	}
	return FormatDescription(best), true
}

// CleanDescription removes salary and short metadata elements from a private
// copy of block and formats the remaining text.
//
// Elements are visited innermost first, so a wrapper is only removed when
// its remaining content is itself noise.
func CleanDescription(block document.Node) string {
	clone := block.Clone()
	elems := clone.FindAll(document.Tag("span", "div", "p", "strong", "b"))
	slices.Reverse(elems)
	for _, el := range elems {
		t := el.Text()
		if t == "" {
			continue
		}
		if slices.ContainsFunc(salaryNoise, func(re *regexp.Regexp) bool { return re.MatchString(t) }) {
			el.Remove()
			continue
		}
		if utf8.RuneCountInString(t) < maxMetadataLen && containsFold(t, metadataKeywords...) {
			el.Remove()
		}
	}
	return FormatDescription(clone.Text())
}

// FormatDescription lays flat text out as paragraphs separated by a blank
// line: numbered items, section headers and bullets start new lines, and
// sentences are split. Leading list numbers are dropped.
func FormatDescription(text string) string {
	text = numberedItem.ReplaceAllString(text, "\n$2 ")
	text = sectionPattern.ReplaceAllString(text, "\n$1")
	text = bulletMarker.ReplaceAllString(text, "\n- ")
	text = sentenceEnd.ReplaceAllString(text, "$1\n$2")
	text = blankRuns.ReplaceAllString(text, " ")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(numberedPrefix.ReplaceAllString(strings.TrimSpace(line), ""))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n\n")
}
