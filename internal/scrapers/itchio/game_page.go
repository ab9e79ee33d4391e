package itchio

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"itchscraper/internal/components/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// GamePage is the landing page of a single game, ex. https://tumblewed.itch.io/doghouse-2
type GamePage struct {
	Title string
	// CanonicalUrl is the page's own url as listed in its twitter metadata, the
	// other endpoints of a game are relative to it.
	CanonicalUrl *url.URL
	CsrfToken    string
	Downloads    []GameDownload
	// ViewHtmlUrl is the embedded player of browser games, nil if there is none.
	ViewHtmlUrl *url.URL
}

func ParseGamePage(sel *Selectors, doc *goquery.Document) (GamePage, error) {
	page, err := parseGamePage(sel, doc)
	if err != nil {
		return GamePage{}, fmt.Errorf("%w: %w", ErrInvalidGamePage, err)
	}
	return page, nil
}

// ParseGamePageHtml parses a raw html body into a GamePage.
func ParseGamePageHtml(sel *Selectors, body []byte) (GamePage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return GamePage{}, fmt.Errorf("%w: parse html: %w", ErrInvalidGamePage, err)
	}
	return ParseGamePage(sel, doc)
}

func parseGamePage(sel *Selectors, doc *goquery.Document) (GamePage, error) {
	title, ok := htmlutil.FirstSelectionText(doc.FindMatcher(sel.GameTitle))
	if !ok {
		return GamePage{}, ErrMissingTitle
	}

	twitterUrl, ok := doc.FindMatcher(sel.TwitterUrl).First().Attr("content")
	if !ok {
		return GamePage{}, ErrMissingTwitterUrl
	}
	canonicalUrl, err := parseAbsoluteUrl(twitterUrl)
	if err != nil {
		return GamePage{}, fmt.Errorf("%w: %w", ErrInvalidTwitterUrl, err)
	}

	csrfToken, ok := doc.FindMatcher(sel.CsrfToken).First().Attr("value")
	if !ok {
		return GamePage{}, ErrMissingCsrfToken
	}

	downloads, err := parseDownloadRows(sel, doc, false)
	if err != nil {
		return GamePage{}, err
	}

	viewHtmlUrl, err := parseViewHtmlUrl(sel, doc)
	if err != nil {
		return GamePage{}, err
	}

	return GamePage{
		Title:        title,
		CanonicalUrl: canonicalUrl,
		CsrfToken:    csrfToken,
		Downloads:    downloads,
		ViewHtmlUrl:  viewHtmlUrl,
	}, nil
}

// parseViewHtmlUrl reads the iframe that is stored html-encoded in the
// placeholder's data-iframe attribute. The placeholder itself is optional but
// once present every following step must succeed.
func parseViewHtmlUrl(sel *Selectors, doc *goquery.Document) (*url.URL, error) {
	placeholder := doc.FindMatcher(sel.ViewHtml).First()
	if placeholder.Length() == 0 {
		return nil, nil
	}

	iframeData, ok := placeholder.Attr("data-iframe")
	if !ok {
		return nil, ErrMissingIFrameData
	}
	fragment, err := goquery.NewDocumentFromReader(strings.NewReader(iframeData))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingIFrameData, err)
	}

	iframe := fragment.FindMatcher(sel.IFrame).First()
	if iframe.Length() == 0 {
		return nil, ErrMissingIFrameData
	}
	src, ok := iframe.Attr("src")
	if !ok {
		return nil, ErrMissingIFrameDataSrc
	}
	parsed, err := parseAbsoluteUrl(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidIFrameDataSrc, err)
	}
	return parsed, nil
}

func parseAbsoluteUrl(raw string) (*url.URL, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return nil, fmt.Errorf("url '%s' is not absolute", raw)
	}
	return parsed, nil
}
