package pipeline

import (
	"encoding/base64"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/luxdoc/doc2quiz/internal/fileutil"
)

// inlineImagePattern accepts base64 image data URIs and nothing that could
// break out of the src attribute.
var inlineImagePattern = regexp.MustCompile(`(?i)^data:image/[a-z0-9.+-]+;base64,[a-z0-9+/=]*$`)

// ImageEmbedder replaces img elements with literal inline-image markup text
// so that images survive as part of the extracted question strings.
type ImageEmbedder struct {
	// Root bounds file resolution; references that escape it are unresolvable.
	Root string

	// ReadFile loads image bytes. Defaults to os.ReadFile.
	ReadFile func(name string) ([]byte, error)
}

// EmbedReport summarizes one Embed pass.
type EmbedReport struct {
	Embedded int
	Dropped  []string // src values that could not be resolved or read
}

// Embed returns a copy of doc in which every img element is replaced by a
// text node `<img src="data:<mime>;base64,<payload>">`. markupPath is the
// rendered file; relative references resolve against its directory and,
// failing that, against the sibling "<stem>_files" assets directory.
// Unresolvable images are removed.
func (e *ImageEmbedder) Embed(doc *html.Node, markupPath string) (*html.Node, EmbedReport) {
	out := Clone(doc)

	var images []*html.Node
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Img {
			images = append(images, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(out)

	baseDir := filepath.Dir(markupPath)
	stem := strings.TrimSuffix(filepath.Base(markupPath), filepath.Ext(markupPath))

	var report EmbedReport
	for _, img := range images {
		src := strings.TrimSpace(attr(img, "src"))
		uri, ok := e.dataURI(src, baseDir, stem)
		if !ok {
			report.Dropped = append(report.Dropped, src)
			img.Parent.RemoveChild(img)
			continue
		}
		img.Parent.InsertBefore(&html.Node{
			Type: html.TextNode,
			Data: `<img src="` + uri + `">`,
		}, img)
		img.Parent.RemoveChild(img)
		report.Embedded++
	}
	return out, report
}

func (e *ImageEmbedder) dataURI(src, baseDir, stem string) (string, bool) {
	if src == "" {
		return "", false
	}
	if strings.HasPrefix(strings.ToLower(src), "data:image/") {
		uri := stripSpace(src)
		return uri, inlineImagePattern.MatchString(uri)
	}

	file, ok := e.resolve(src, baseDir, stem)
	if !ok {
		return "", false
	}

	readFile := e.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}
	data, err := readFile(file)
	if err != nil {
		return "", false
	}

	return "data:" + ImageMIME(src) + ";base64," + base64.StdEncoding.EncodeToString(data), true
}

// resolve tries, in order: src relative to baseDir, its URL-decoded form,
// then the basename inside "<stem>_files".
func (e *ImageEmbedder) resolve(src, baseDir, stem string) (string, bool) {
	candidates := []string{filepath.Join(baseDir, filepath.FromSlash(src))}
	name := src
	if unescaped, err := url.PathUnescape(src); err == nil && unescaped != src {
		candidates = append(candidates, filepath.Join(baseDir, filepath.FromSlash(unescaped)))
		name = unescaped
	}
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	candidates = append(candidates, filepath.Join(baseDir, stem+"_files", base))

	root := e.Root
	if root == "" {
		root = baseDir
	}
	for _, c := range candidates {
		if !fileutil.IsPathUnderDir(c, root) {
			continue
		}
		if fileutil.FileExists(c) {
			return c, true
		}
	}
	return "", false
}

// ImageMIME maps a reference's extension to its media type; PNG is the fallback.
func ImageMIME(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	switch strings.ToLower(path.Ext(ref)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	default:
		return "image/png"
	}
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
