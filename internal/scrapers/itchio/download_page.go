package itchio

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// DownloadPage is the page a game's downloads can be fetched from once it has
// been claimed, its url comes from Client.DownloadPageUrl.
type DownloadPage struct {
	Downloads []DownloadPageEntry
}

// DownloadPageEntry is a GameDownload whose id is always known.
type DownloadPageEntry struct {
	Title     string
	SizeText  string
	Id        uint64
	Platforms []Platform
}

func (d DownloadPageEntry) ParseSize() (uint64, bool) {
	return ParseSizeText(d.SizeText)
}

func ParseDownloadPage(sel *Selectors, doc *goquery.Document) (DownloadPage, error) {
	rows, err := parseDownloadRows(sel, doc, true)
	if err != nil {
		return DownloadPage{}, fmt.Errorf("%w: %w", ErrInvalidDownloadPage, err)
	}

	downloads := make([]DownloadPageEntry, len(rows))
	for i, row := range rows {
		downloads[i] = DownloadPageEntry{
			Title:     row.Title,
			SizeText:  row.SizeText,
			Id:        *row.Id,
			Platforms: row.Platforms,
		}
	}
	return DownloadPage{Downloads: downloads}, nil
}

// ParseDownloadPageHtml parses a raw html body into a DownloadPage.
func ParseDownloadPageHtml(sel *Selectors, body []byte) (DownloadPage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return DownloadPage{}, fmt.Errorf("%w: parse html: %w", ErrInvalidDownloadPage, err)
	}
	return ParseDownloadPage(sel, doc)
}

// FindDownloadByTitle returns the first entry whose title is exactly title.
// Titles are not guaranteed to be unique, on duplicates the first one in
// document order wins.
func (p DownloadPage) FindDownloadByTitle(title string) (DownloadPageEntry, error) {
	for _, d := range p.Downloads {
		if d.Title == title {
			return d, nil
		}
	}
	return DownloadPageEntry{}, &NoMatchingDownloadError{Title: title}
}
