// Package pipeline implements the markup stages between the document
// renderer and the quiz emitters.
//
// The stages operate on a parsed golang.org/x/net/html tree:
//   - Parse/ParseFile: charset-aware parsing of the rendered .htm(l) file
//   - Sanitizer: artifact removal and angle-bracket escaping in text nodes
//   - ImageEmbedder: replaces img elements with inline data-URI markup text
//   - TableExtractor: reads question rows out of every table
//
// Sanitizer and ImageEmbedder return a new tree and leave their input
// untouched, so each stage can be tested and reordered in isolation.
// Quiz-syntax escaping is not done here; it belongs to the emitters in the
// root doc2quiz package.
package pipeline
