// Package diff computes edit scripts between two token sequences.
//
// Representation: an edit script is an ordered []Operation. Each Operation has an Op and a half-open range into each sequence:
//   - OpEqual: a[A1:A2] and b[B1:B2] are pairwise-equal tokens (A2-A1 == B2-B1)
//   - OpInsert: b[B1:B2] is new; A1 == A2 marks where it was inserted relative to a
//   - OpDelete: a[A1:A2] is gone; B1 == B2 marks where it was removed relative to b
//
// Operations are never empty.
//
// Invariants (see Validate):
//   - The B ranges, in order, tile [0, len(b)).
//   - The A ranges cover [0, len(a)) exactly once. For SequenceMatcher they also tile it in order; SegmentMatcher may emit a moved block's Equal out of
//     a-order.
//   - Replay(a, b, ops) == b: copy a[A1:A2] for Equal, skip Delete, copy b[B1:B2] for Insert.
//   - diff(a, a) is a single Equal (or nothing, when a is empty).
//
// Matchers:
//   - SequenceMatcher finds the longest contiguous matching block, then recurses on either side of it (Ratcliff/Obershelp, as in Python's difflib),
//     with an optional junk threshold that keeps very frequent tokens out of the match index.
//   - SegmentMatcher first matches whole paragraphs and sentences by content, wherever they are, and then runs SequenceMatcher over what is left. A block
//     that moved is reported as a single Equal instead of a Delete and an Insert.
//
// Rendering: Render marks deletions and insertions inline, optionally refining single-token replacements character by character. Summarize counts what
// changed.
package diff
