package proof

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/luxdoc/doc2quiz/internal/assets"
)

// Sentinel errors for sheet rendering.
var (
	ErrHTMLConversion = errors.New("HTML conversion failed")
	ErrTemplate       = errors.New("proof template failed")
)

// Renderer turns a Sheet into a standalone styled HTML document.
type Renderer struct {
	md   goldmark.Markdown
	tmpl *template.Template
	css  string
}

type templateData struct {
	Lang    string
	Title   string
	Content template.HTML
}

// NewRenderer loads the proof template and the named style from loader.
// An empty style uses assets.DefaultStyleName.
func NewRenderer(loader assets.Loader, style string) (*Renderer, error) {
	if style == "" {
		style = assets.DefaultStyleName
	}
	css, err := loader.LoadStyle(style)
	if err != nil {
		return nil, err
	}
	return NewRendererWithCSS(loader, css)
}

// NewRendererWithCSS is NewRenderer with CSS content supplied directly.
func NewRendererWithCSS(loader assets.Loader, css string) (*Renderer, error) {
	raw, err := loader.LoadTemplate(assets.DefaultTemplateName)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New("proof").Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplate, err)
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
			// Records carry inline <img src="data:..."> markup.
			html.WithUnsafe(),
		),
	)
	return &Renderer{md: md, tmpl: tmpl, css: css}, nil
}

// ToHTML renders the sheet. goldmark has no context support, so conversion
// runs in a goroutine and ctx only bounds the wait.
func (r *Renderer) ToHTML(ctx context.Context, sheet Sheet) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var body bytes.Buffer
		if err := r.md.Convert([]byte(sheet.Markdown()), &body); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}

		lang := sheet.Lang
		if lang == "" {
			lang = "uz"
		}
		var page bytes.Buffer
		data := templateData{Lang: lang, Title: sheet.Title, Content: template.HTML(body.String())} // #nosec G203 -- goldmark output
		if err := r.tmpl.Execute(&page, data); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrTemplate, err)}
			return
		}
		done <- result{html: InjectCSS(page.String(), r.css)}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		return res.html, res.err
	}
}

// InjectCSS inserts a <style> block before </head>, after <body>, or at
// the start of the document, whichever is found first.
func InjectCSS(htmlContent, css string) string {
	if css == "" {
		return htmlContent
	}

	block := "<style>" + sanitizeCSS(css) + "</style>"
	lower := strings.ToLower(htmlContent)

	if idx := strings.Index(lower, "</head>"); idx != -1 {
		return htmlContent[:idx] + block + htmlContent[idx:]
	}
	if idx := strings.Index(lower, "<body"); idx != -1 {
		if end := strings.Index(htmlContent[idx:], ">"); end != -1 {
			pos := idx + end + 1
			return htmlContent[:pos] + block + htmlContent[pos:]
		}
	}
	return block + htmlContent
}

// sanitizeCSS keeps style content from closing its own <style> element.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
