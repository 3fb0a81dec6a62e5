// Package document is the read-only query layer that every extraction rule
// and the link discoverer work against.
//
// A Document wraps a parsed HTML tree. Lookups are expressed with Criteria
// (tag names, class membership or class pattern, attribute value pattern,
// own-text pattern) and return Nodes in document order.
//
// Design decision: Parsing and selector matching are delegated to goquery
// (cascadia on top of golang.org/x/net/html) while the "walk forward/backward
// in document order" helpers operate on the raw html.Node tree because:
//  1. goquery has no equivalent of "the next div after this heading"
//  2. Heuristic rules on this site depend on that kind of positional lookup
//  3. The raw tree is already available, so no second parse is required
//
// The only mutating operation is Node.Remove, which must only be used on a
// private copy obtained through Node.Clone.
package document
