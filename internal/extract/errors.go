package extract

import "fmt"

// ParseError records a rule that failed while reading a document.
// It never escapes Field.Extract; it is logged and the rule is treated as
// "no match".
type ParseError struct {
	// Field is the output field being extracted.
	Field string

	// Rule is the name of the failing rule.
	Rule string

	// Cause is the recovered panic value.
	Cause any
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("extract %s: rule %s failed: %v", e.Field, e.Rule, e.Cause)
}
