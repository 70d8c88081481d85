// Package goquery cleans HTML documents before conversion.
package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/html2md"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Ensure Normalizer implements html2md.Normalizer at compile time.
var _ html2md.Normalizer = (*Normalizer)(nil)

// Normalizer strips unwanted elements, comments and inline styles from HTML
// and collapses insignificant whitespace.
type Normalizer struct {
	removeTags []string
	extractor  html2md.Extractor
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithExtractor runs e before cleaning so only the main content is kept.
// When extraction fails or finds nothing, the full document is cleaned.
func WithExtractor(e html2md.Extractor) Option {
	return func(n *Normalizer) {
		n.extractor = e
	}
}

// NewNormalizer creates a Normalizer that removes the given elements.
func NewNormalizer(removeTags []string, opts ...Option) *Normalizer {
	n := &Normalizer{}
	for _, tag := range removeTags {
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
			n.removeTags = append(n.removeTags, tag)
		}
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize returns the cleaned document. It returns EINVALID when the input
// is empty or nothing readable remains after cleaning.
func (n *Normalizer) Normalize(rawHTML string) (string, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return "", html2md.Errorf(html2md.EINVALID, "empty HTML input")
	}

	source := rawHTML
	if n.extractor != nil {
		if res, err := n.extractor.Extract(rawHTML); err == nil && strings.TrimSpace(res.ContentHTML) != "" {
			source = withTitle(res)
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(source))
	if err != nil {
		return "", html2md.Errorf(html2md.EINVALID, "failed to parse HTML: %v", err)
	}

	if len(n.removeTags) > 0 {
		doc.Find(strings.Join(n.removeTags, ", ")).Remove()
	}
	doc.Find("[style]").RemoveAttr("style")
	for _, node := range doc.Nodes {
		clean(node, false)
	}

	if !hasContent(doc) {
		return "", html2md.Errorf(html2md.EINVALID, "no content left after cleaning")
	}

	out, err := doc.Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// withTitle wraps extracted content in a document carrying the page title.
func withTitle(res *html2md.ExtractResult) string {
	if res.Title == "" {
		return res.ContentHTML
	}
	return "<html><head><title>" + html.EscapeString(res.Title) + "</title></head><body>" +
		res.ContentHTML + "</body></html>"
}

var spaces = regexp.MustCompile(`[ \t\r\n\f]+`)

// clean removes comment nodes below n and collapses whitespace in text
// nodes outside preformatted elements.
func clean(n *html.Node, preformatted bool) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Pre, atom.Textarea, atom.Code, atom.Script, atom.Style:
			preformatted = true
		}
	}

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch c.Type {
		case html.CommentNode:
			n.RemoveChild(c)
		case html.TextNode:
			if !preformatted {
				c.Data = spaces.ReplaceAllString(c.Data, " ")
				if c.Data == " " && isBlockBoundary(c) {
					n.RemoveChild(c)
				}
			}
		default:
			clean(c, preformatted)
		}
		c = next
	}
}

// isBlockBoundary reports whether a whitespace-only text node sits between
// block-level siblings, where it carries no meaning.
func isBlockBoundary(n *html.Node) bool {
	return edgeIsBlock(n.PrevSibling, n.Parent) && edgeIsBlock(n.NextSibling, n.Parent)
}

func edgeIsBlock(sibling, parent *html.Node) bool {
	if sibling == nil {
		return isBlock(parent)
	}
	return isBlock(sibling)
}

func isBlock(n *html.Node) bool {
	if n == nil {
		return true
	}
	if n.Type != html.ElementNode {
		return n.Type == html.CommentNode || n.Type == html.DocumentNode
	}
	switch n.DataAtom {
	case atom.Address, atom.Article, atom.Aside, atom.Blockquote, atom.Body,
		atom.Dd, atom.Details, atom.Div, atom.Dl, atom.Dt, atom.Fieldset,
		atom.Figcaption, atom.Figure, atom.Footer, atom.Form, atom.H1, atom.H2,
		atom.H3, atom.H4, atom.H5, atom.H6, atom.Head, atom.Header, atom.Hr,
		atom.Html, atom.Li, atom.Link, atom.Main, atom.Meta, atom.Nav, atom.Ol,
		atom.P, atom.Pre, atom.Section, atom.Summary, atom.Table, atom.Tbody,
		atom.Td, atom.Tfoot, atom.Th, atom.Thead, atom.Title, atom.Tr, atom.Ul:
		return true
	}
	return false
}

// hasContent reports whether the body has text or embedded media.
func hasContent(doc *goquery.Document) bool {
	body := doc.Find("body")
	if strings.TrimSpace(body.Text()) != "" {
		return true
	}
	return body.Find("img, svg, video, audio, picture, table, iframe").Length() > 0
}
