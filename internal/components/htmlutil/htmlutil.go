package htmlutil

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// FirstText returns the first text node under node in document order, unlike
// goquery's Text() which joins all of them.
func FirstText(node *html.Node) (string, bool) {
	if node == nil {
		return "", false
	}
	if node.Type == html.TextNode {
		return node.Data, true
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		text, ok := FirstText(child)
		if ok {
			return text, true
		}
	}
	return "", false
}

// FirstSelectionText is FirstText applied to the first node of sel.
func FirstSelectionText(sel *goquery.Selection) (string, bool) {
	if sel.Length() == 0 {
		return "", false
	}
	return FirstText(sel.Get(0))
}
