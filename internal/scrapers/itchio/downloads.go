package itchio

import (
	"fmt"
	"slices"
	"strconv"

	"itchscraper/internal/components/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// GameDownload is a single upload listed on a game page.
type GameDownload struct {
	Title string
	// SizeText is the size as displayed, ex. "45 MB", see ParseSize.
	SizeText string
	// Id is nil when the game page does not expose it yet (ex. the game must be
	// claimed or bought first), see ResolveDownloadId.
	Id        *uint64
	Platforms []Platform
}

// ParseSize is ParseSizeText on the download's size text.
func (d GameDownload) ParseSize() (uint64, bool) {
	return ParseSizeText(d.SizeText)
}

// parseDownloadRow reads one `.upload` row. When requireId is false a missing
// upload id yields a nil Id, an unparsable one is always an error.
func parseDownloadRow(sel *Selectors, row *goquery.Selection, requireId bool) (GameDownload, error) {
	title, ok := htmlutil.FirstSelectionText(row.FindMatcher(sel.DownloadTitle))
	if !ok {
		return GameDownload{}, ErrMissingTitle
	}

	sizeText, ok := htmlutil.FirstSelectionText(row.FindMatcher(sel.FileSize))
	if !ok {
		return GameDownload{}, ErrMissingFileSize
	}

	var id *uint64
	idAttr, ok := row.FindMatcher(sel.DownloadButton).First().Attr("data-upload_id")
	switch {
	case ok:
		parsed, err := strconv.ParseUint(idAttr, 10, 64)
		if err != nil {
			return GameDownload{}, fmt.Errorf("%w: %w", ErrInvalidId, err)
		}
		id = &parsed
	case requireId:
		return GameDownload{}, ErrMissingId
	}

	platforms, err := parsePlatforms(sel, row)
	if err != nil {
		return GameDownload{}, err
	}

	return GameDownload{
		Title:     title,
		SizeText:  sizeText,
		Id:        id,
		Platforms: platforms,
	}, nil
}

// parsePlatforms fails on the first icon that cannot be classified.
func parsePlatforms(sel *Selectors, row *goquery.Selection) ([]Platform, error) {
	container := row.FindMatcher(sel.Platforms).First()
	if container.Length() == 0 {
		return nil, ErrMissingPlatforms
	}

	icons := container.FindMatcher(sel.PlatformIcon)
	platforms := make([]Platform, 0, icons.Length())
	for i := range icons.Nodes {
		token, ok := platformToken(icons.Eq(i).AttrOr("class", ""))
		if !ok {
			return nil, ErrMissingPlatformString
		}
		platform, err := ClassifyPlatform(token)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(platforms, platform) {
			platforms = append(platforms, platform)
		}
	}
	return platforms, nil
}

// parseDownloadRows parses every row in document order, the first failing row
// aborts the whole list.
func parseDownloadRows(sel *Selectors, doc *goquery.Document, requireId bool) ([]GameDownload, error) {
	rows := doc.FindMatcher(sel.DownloadRow)
	downloads := make([]GameDownload, 0, rows.Length())
	for i := range rows.Nodes {
		download, err := parseDownloadRow(sel, rows.Eq(i), requireId)
		if err != nil {
			return nil, &DownloadError{Index: i, Err: err}
		}
		downloads = append(downloads, download)
	}
	return downloads, nil
}
