package doc2quiz

import (
	"fmt"
	"strings"
)

// Emitter serializes question records into a quiz interchange syntax.
type Emitter interface {
	Format() Format
	Emit(records []QuestionRecord) string
}

var (
	_ Emitter = GIFTEmitter{}
	_ Emitter = HemisEmitter{}
)

// EmitterFor returns the emitter for f.
func EmitterFor(f Format) (Emitter, error) {
	switch f {
	case FormatGIFT:
		return GIFTEmitter{}, nil
	case FormatHemis:
		return HemisEmitter{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, string(f))
}

// Emit serializes records with the emitter for f.
func Emit(f Format, records []QuestionRecord) (string, error) {
	e, err := EmitterFor(f)
	if err != nil {
		return "", err
	}
	return e.Emit(records), nil
}

// GIFTEmitter writes Moodle GIFT:
//
//	::<question>{
//	=<answer>
//	~<distractor>
//	}
//
// Blocks are separated by one empty line. The reserved characters
// { } = ~ are backslash-escaped in every field, inline data URIs included.
type GIFTEmitter struct{}

func (GIFTEmitter) Format() Format { return FormatGIFT }

func (GIFTEmitter) Emit(records []QuestionRecord) string {
	var b strings.Builder
	for i, r := range records {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("::")
		b.WriteString(EscapeGIFT(r.Question))
		b.WriteString("{\n=")
		b.WriteString(EscapeGIFT(r.CorrectAnswer))
		b.WriteByte('\n')
		for _, d := range r.Distractors {
			b.WriteByte('~')
			b.WriteString(EscapeGIFT(d))
			b.WriteByte('\n')
		}
		b.WriteString("}\n")
	}
	return b.String()
}

var (
	giftEscaper   = strings.NewReplacer(`{`, `\{`, `}`, `\}`, `=`, `\=`, `~`, `\~`)
	giftUnescaper = strings.NewReplacer(`\{`, `{`, `\}`, `}`, `\=`, `=`, `\~`, `~`)
)

// EscapeGIFT backslash-escapes the GIFT reserved characters { } = ~.
func EscapeGIFT(s string) string {
	return giftEscaper.Replace(s)
}

// UnescapeGIFT reverses EscapeGIFT.
func UnescapeGIFT(s string) string {
	return giftUnescaper.Replace(s)
}

// Hemis block separators.
const (
	hemisFieldSep  = "===="
	hemisRecordSep = "++++"
)

// HemisEmitter writes the Hemis test format:
//
//	<question>
//	====
//	#<answer>
//	====
//	<distractor>
//
//	++++
//
// Distractors are separated by "====" with none after the last one;
// each record ends with a blank line, "++++" and another blank line.
// No escaping is applied.
type HemisEmitter struct{}

func (HemisEmitter) Format() Format { return FormatHemis }

func (HemisEmitter) Emit(records []QuestionRecord) string {
	var b strings.Builder
	for _, r := range records {
		b.WriteString(r.Question)
		b.WriteString("\n" + hemisFieldSep + "\n#")
		b.WriteString(r.CorrectAnswer)
		b.WriteByte('\n')
		for _, d := range r.Distractors {
			b.WriteString(hemisFieldSep + "\n")
			b.WriteString(d)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
		b.WriteString(hemisRecordSep + "\n\n")
	}
	return b.String()
}
