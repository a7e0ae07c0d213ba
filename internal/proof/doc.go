// Package proof builds the review sheet: a human-readable rendition of the
// extracted quiz records that an editor checks before importing the quiz.
//
// The sheet is written as Markdown, converted with goldmark, wrapped in the
// proof template and styled with CSS from internal/assets. Inline image
// markup in the records passes through untouched, so embedded images
// appear on the sheet as they will in the quiz.
package proof
