// Package token splits text into an ordered sequence of typed tokens, the unit the matchers compare.
//
// Tokenization is total and lossless: every byte of the input belongs to exactly one token, concatenating token texts reproduces the input, and each
// token records its byte offset. Invalid UTF-8 bytes become one-byte Other tokens. Whitespace and punctuation are emitted as runs; words follow
// Unicode UAX #29 word boundaries.
//
// Tokens compare by (Kind, match text). The match text is Norm when set (the case fold, if lowercase_for_matching is configured) and Text otherwise.
// Offsets never take part in equality.
package token
