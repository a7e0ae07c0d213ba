// Package doc2quiz converts quiz documents written as Word tables into the
// GIFT (Moodle) and Hemis test import formats.
//
// # Quick Start
//
//	conv := doc2quiz.NewConverter()
//	defer conv.Close()
//
//	res, err := conv.Convert(ctx, doc2quiz.Input{
//	    Path:   "quiz.docx",
//	    Format: doc2quiz.FormatGIFT,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(res.Text)
//
// Use ConvertFile to write the result straight to disk.
//
// # Document Layout
//
// Every table row is one question: column 1 numbering (ignored), column 2
// the question, column 3 the correct answer and any further non-empty
// columns distractors. Header rows ("Savol", "To'g'ri javob", "Question",
// ...) and empty rows are skipped. Images inside cells are inlined as
// <img src="data:..."> markup.
//
// # Conversion Pipeline
//
//  1. The source is copied into a private workspace directory
//  2. An office backend (LibreOffice, or Word on Windows) renders it to HTML
//  3. The markup is parsed, cleaned of converter artifacts and its images inlined
//  4. Table rows become QuestionRecord values
//  5. An Emitter serializes the records when a Format is requested
//
// The workspace is removed when Convert returns, whatever the outcome.
//
// # Errors
//
// Failures after input validation are *ConversionError values whose Kind is
// one of ErrConverterUnavailable, ErrRenderFailure, ErrParseFailure or
// ErrIOFailure. errors.Is matches the kind and the underlying cause:
//
//	if errors.Is(err, doc2quiz.ErrConverterUnavailable) {
//	    // install LibreOffice
//	}
//
// # Parallel Processing
//
// A Converter is safe for concurrent use. ConverterPool bounds how many
// conversions run at once:
//
//	pool := doc2quiz.NewConverterPool(doc2quiz.ResolvePoolSize(0))
//	defer pool.Close()
//
//	conv, err := pool.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(conv)
//
// # Review Sheet
//
// Converter.Proof renders extracted records as a styled HTML page, and
// optionally a PDF through headless Chrome, for checking before import.
package doc2quiz
