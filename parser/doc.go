// Package parser turns HOCON source bytes into an Intermediate Tree: a
// Node whose Kind may still be Substitution or Concat, awaiting the merge
// and substitution-resolution passes done by sibling packages.
//
// # Architecture
//
//	┌─────────────┐     ┌─────────────┐     ┌─────────────┐
//	│   Input     │────▶│   Lexer     │────▶│   Parser    │
//	│  (bytes)    │     │  (tokens)   │     │    (IT)     │
//	└─────────────┘     └─────────────┘     └─────────────┘
//	                                               │
//	                                               ▼
//	                                        ┌─────────────┐
//	                                        │ IncludeHost │
//	                                        │  callback   │
//	                                        └─────────────┘
//
// # Strict vs. lenient
//
// Parse takes a Mode. In ModeStrict the first syntax error aborts parsing
// and is returned as a *hocerr.ParseError. In ModeLenient, the offending
// value becomes a KindBad node and parsing resynchronizes at the next
// member separator or closing brace, so the rest of the document still
// parses.
//
// # Includes
//
// The parser never performs I/O itself. When it encounters an include
// directive, it calls the IncludeHost supplied to Parse, which is
// responsible for fetching, recursively parsing, and returning the
// included Node (or an error). This keeps the grammar pure, matching the
// include package's two-phase design (§4.2).
package parser
