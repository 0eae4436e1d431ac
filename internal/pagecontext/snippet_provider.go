package pagecontext

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/candelahq/candela/internal/interfaces"
	"github.com/candelahq/candela/internal/logging"
	"github.com/candelahq/candela/internal/model"
)

// SnippetProvider derives element context from the markup snippet the
// scanner attached to each violation node, with no live page involved.
// Viewport membership and ancestor-dependent signals cannot be observed in
// a detached snippet and default to their conservative values; visibility,
// ARIA attributes and descendant complexity come straight from the markup.
type SnippetProvider struct {
	bySelector map[string]string
	logger     logging.Logger
}

// NewSnippetProvider indexes the violations' nodes by primary selector.
func NewSnippetProvider(violations []model.RawViolation, logger logging.Logger) *SnippetProvider {
	idx := make(map[string]string)
	for _, v := range violations {
		for _, n := range v.Nodes {
			sel := n.Selector()
			if sel == "" || strings.TrimSpace(n.HTML) == "" {
				continue
			}
			if _, ok := idx[sel]; !ok {
				idx[sel] = n.HTML
			}
		}
	}
	if logger == nil {
		logger = logging.NewStdoutLogger("snippet-provider")
	}
	return &SnippetProvider{
		bySelector: idx,
		logger:     logger.With(logging.Field{Key: "component", Value: "snippet-provider"}),
	}
}

// GetElementContext parses the indexed snippet for the selector. Unknown
// selectors and unparseable snippets report "no context available" as
// (nil, nil), never an error.
func (p *SnippetProvider) GetElementContext(_ context.Context, selector string) (*model.ElementContext, error) {
	snippet, ok := p.bySelector[selector]
	if !ok {
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snippet))
	if err != nil {
		p.logger.Debug("snippet unparseable", logging.Field{Key: "selector", Value: selector})
		return nil, nil
	}

	root := doc.Find("body").Children().First()
	if root.Length() == 0 {
		return nil, nil
	}
	node := root.Nodes[0]

	ec := &model.ElementContext{
		TagName:        node.Data,
		AriaAttributes: ariaAttributes(node),
	}

	style := strings.ToLower(attr(node, "style"))
	if strings.Contains(style, "display:none") || strings.Contains(style, "display: none") ||
		strings.Contains(style, "visibility:hidden") || strings.Contains(style, "visibility: hidden") ||
		hasAttr(node, "hidden") {
		ec.IsHidden = true
	}

	if attr(node, "role") == "dialog" || attr(node, "aria-modal") == "true" {
		ec.IsInModal = true
	}

	if root.Find("*").Length() > model.ComplexDescendantThreshold {
		ec.HasComplexDescendants = true
	}

	return ec, nil
}

// CaptureScreenshot is a no-op: snippets carry no visual evidence.
func (p *SnippetProvider) CaptureScreenshot(context.Context, string, string) (string, error) {
	return "", nil
}

// Close is a no-op.
func (p *SnippetProvider) Close() error { return nil }

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, name string) bool {
	for _, a := range n.Attr {
		if a.Key == name {
			return true
		}
	}
	return false
}

func ariaAttributes(n *html.Node) map[string]string {
	var out map[string]string
	for _, a := range n.Attr {
		if strings.HasPrefix(a.Key, "aria-") {
			if out == nil {
				out = make(map[string]string)
			}
			out[a.Key] = a.Val
		}
	}
	return out
}

var _ interfaces.ContextProvider = (*SnippetProvider)(nil)
