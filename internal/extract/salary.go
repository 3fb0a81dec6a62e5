package extract

import "regexp"

// Salary is a parsed salary text.
type Salary struct {
	// Min is the whole cleaned text, or the lower bound of a range.
	Min string

	// Max is set only when a range was detected.
	Max string

	// Type is mensual, hora or anual.
	Type string
}

// Salary types.
const (
	SalaryMonthly = "mensual"
	SalaryHourly  = "hora"
	SalaryAnnual  = "anual"
)

var (
	// salaryText finds text carrying a salary value.
	salaryText = regexp.MustCompile(`₡|US\$|(?i:a convenir|negociable)`)

	parenthetical = regexp.MustCompile(`\([^)]*\)`)

	// rangeSeparator splits "₡500,000 - ₡700,000" and "₡500,000 a ₡700,000".
	rangeSeparator = regexp.MustCompile(`\s+(?:-|–|a|hasta)\s+`)

	hasDigit = regexp.MustCompile(`\d`)

	hourlyKeyword  = regexp.MustCompile(`\b(hora|horas|hourly|per hour)\b`)
	annualKeyword  = regexp.MustCompile(`\b(anual|annual|al ano|per year|yearly)\b`)
	monthlyKeyword = regexp.MustCompile(`\b(mensual|monthly|al mes|por mes)\b`)
)

// ParseSalary splits a salary text into min, max and type.
//
// Parenthetical qualifiers are removed from the values. The type keyword is
// looked up in the text before that removal, since qualifiers such as
// "(Por hora)" are the usual carrier of the period. Without a keyword the
// type is monthly. Empty input yields the zero Salary.
func ParseSalary(text string) Salary {
	raw := Trim(text)
	if raw == "" {
		return Salary{}
	}
	cleaned := Trim(parenthetical.ReplaceAllString(raw, ""))
	if cleaned == "" {
		return Salary{}
	}

	s := Salary{Min: cleaned, Type: salaryType(raw)}
	if parts := rangeSeparator.Split(cleaned, 2); len(parts) == 2 {
		lo, hi := Trim(parts[0]), Trim(parts[1])
		if hasDigit.MatchString(lo) && hasDigit.MatchString(hi) {
			s.Min, s.Max = lo, hi
		}
	}
	return s
}

func salaryType(text string) string {
	f := fold(text)
	switch {
	case monthlyKeyword.MatchString(f):
		return SalaryMonthly
	case hourlyKeyword.MatchString(f):
		return SalaryHourly
	case annualKeyword.MatchString(f):
		return SalaryAnnual
	default:
		return SalaryMonthly
	}
}
