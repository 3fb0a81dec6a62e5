// Package extract turns a detail page into a model.JobRecord.
//
// Every output field is produced by a Field: an ordered list of Rules that
// are tried against the same Input until one yields a non-empty value.
// Absence is normal; a field whose rules all fail keeps its null value.
//
// Design decision: Rules are plain values built once at package init
// rather than methods on a scraper type because:
//  1. Each rule can be tested on its own with a small HTML fixture
//  2. Supporting a new markup variant means appending a rule, nothing else
//  3. Fields never read each other's results, so order of evaluation is free
//
// A panic inside a rule (for example an unexpected tree shape) is recovered
// and turned into a ParseError that only disables that rule for that call.
//
// The Assembler composes all fields, fills site defaults and normalizes the
// record. It never fails.
package extract
