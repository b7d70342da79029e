// Package segment groups a token sequence into a tree of matchable segments: paragraphs, the sentences inside them, and the whitespace runs between
// them.
//
// The tree is an arena: Tree.Nodes holds every segment, children are stored as node ids, and there are no parent pointers (walk top-down from
// Tree.Roots). The roots tile the whole token sequence and every node with children is exactly the concatenation of its children, so no token is lost
// and round-tripping is lossless.
//
// Boundaries are found greedily in a single pass:
//   - a paragraph break is a run of whitespace tokens containing at least two newlines; such runs, and whitespace at either end of the text, are
//     top-level Whitespace segments
//   - a sentence ends at a punctuation run containing a terminal mark followed by whitespace (full-width CJK terminals need no whitespace); the
//     whitespace becomes a Whitespace child of the paragraph
//   - a lone "." after a word in the abbreviation list is not a boundary
//
// The abbreviation list is a heuristic. It is configurable data and DefaultAbbreviations is only a reasonable English default.
//
// Each segment carries a 64-bit FNV-1a hash of its token keys. SameContent uses the hash as a filter and then compares keys, so two segments from different
// texts are identical exactly when their tokens are pairwise equal.
package segment
