package itchio

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"

	_ "embed"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/game_page.html
var gamePageTest []byte

//go:embed testdata/game_page_deferred.html
var gamePageDeferredTest []byte

const testBase = "https://tumblewed.itch.io"

var testSelectors = NewSelectors()

func renderFixture(fixture []byte, base string) []byte {
	return bytes.ReplaceAll(fixture, []byte("{{BASE}}"), []byte(base))
}

func uint64Ptr(v uint64) *uint64 {
	return &v
}

func mustParseUrl(t testing.TB, raw string) *url.URL {
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return parsed
}

// uploadRow renders one `.upload` row, an empty id leaves out the download button.
func uploadRow(title, size, id string, icons ...string) string {
	var out strings.Builder
	out.WriteString(`<div class="upload">`)
	fmt.Fprintf(&out, `<strong class="name">%s</strong>`, title)
	fmt.Fprintf(&out, `<span class="file_size"><span>%s</span></span>`, size)
	out.WriteString(`<span class="download_platforms">`)
	for _, icon := range icons {
		fmt.Fprintf(&out, `<span class="icon %s"></span>`, icon)
	}
	out.WriteString(`</span>`)
	if id != "" {
		fmt.Fprintf(&out, `<a class="button download_btn" data-upload_id="%s">Download</a>`, id)
	}
	out.WriteString(`</div>`)
	return out.String()
}

type gamePageParts struct {
	title      string
	twitterUrl string
	csrfToken  string
	extra      string
	rows       []string
}

func (p gamePageParts) render() []byte {
	var out strings.Builder
	out.WriteString("<html><head>")
	if p.csrfToken != "" {
		fmt.Fprintf(&out, `<meta name="csrf_token" value="%s"/>`, p.csrfToken)
	}
	if p.twitterUrl != "" {
		fmt.Fprintf(&out, `<meta name="twitter:url" content="%s"/>`, p.twitterUrl)
	}
	out.WriteString("</head><body>")
	if p.title != "" {
		fmt.Fprintf(&out, `<h1 class="game_title">%s</h1>`, p.title)
	}
	out.WriteString(p.extra)
	for _, r := range p.rows {
		out.WriteString(r)
	}
	out.WriteString("</body></html>")
	return []byte(out.String())
}

func validParts(rows ...string) gamePageParts {
	return gamePageParts{
		title:      "Doghouse 2",
		twitterUrl: testBase + "/doghouse-2",
		csrfToken:  "token",
		rows:       rows,
	}
}

func TestParseGamePageFixture(t *testing.T) {
	page, err := ParseGamePageHtml(testSelectors, renderFixture(gamePageTest, testBase))
	require.NoError(t, err)

	expected := GamePage{
		Title:        "Doghouse 2",
		CanonicalUrl: mustParseUrl(t, testBase+"/doghouse-2"),
		CsrfToken:    "WyJ0dW1ibGV3ZWQiLDE3MDAwMDAwMDBd",
		Downloads: []GameDownload{
			{
				Title:     "Doghouse2-win.zip",
				SizeText:  "45 MB",
				Id:        uint64Ptr(12345),
				Platforms: []Platform{PlatformWindows},
			},
		},
	}
	diff := cmp.Diff(expected, page)
	if diff != "" {
		t.Fatal(diff)
	}

	size, ok := page.Downloads[0].ParseSize()
	require.True(t, ok)
	require.Equal(t, uint64(45_000_000), size)
}

func TestParseGamePageDeferredIds(t *testing.T) {
	page, err := ParseGamePageHtml(testSelectors, renderFixture(gamePageDeferredTest, testBase))
	require.NoError(t, err)

	require.Equal(t, "Roll Racer", page.Title)
	require.Equal(t, "deferred-token", page.CsrfToken)
	require.Equal(t, testBase+"/roll-racer", page.CanonicalUrl.String())
	require.NotNil(t, page.ViewHtmlUrl)
	require.Equal(t, "https://html.itch.zone/html/1234/index.html", page.ViewHtmlUrl.String())

	require.Len(t, page.Downloads, 3)
	require.Nil(t, page.Downloads[0].Id)
	require.Nil(t, page.Downloads[1].Id)
	require.Equal(t, uint64Ptr(777), page.Downloads[2].Id)
	require.Equal(t, []Platform{PlatformLinux}, page.Downloads[1].Platforms)
	require.Equal(t, []Platform{PlatformMacOS}, page.Downloads[2].Platforms)
}

func TestParseGamePageKeepsDocumentOrder(t *testing.T) {
	var rows []string
	var titles []string
	for i := 0; i < 12; i++ {
		title := fmt.Sprintf("build-%02d.zip", i)
		titles = append(titles, title)
		rows = append(rows, uploadRow(title, "1 MB", fmt.Sprint(100+i), "icon-tux"))
	}

	page, err := ParseGamePageHtml(testSelectors, validParts(rows...).render())
	require.NoError(t, err)
	require.Len(t, page.Downloads, len(rows))
	for i, d := range page.Downloads {
		require.Equal(t, titles[i], d.Title)
		require.Equal(t, uint64Ptr(uint64(100+i)), d.Id)
	}
}

func TestParseGamePageNoDownloads(t *testing.T) {
	page, err := ParseGamePageHtml(testSelectors, validParts().render())
	require.NoError(t, err)
	require.Empty(t, page.Downloads)
	require.Nil(t, page.ViewHtmlUrl)
}

func TestParseGamePagePlatforms(t *testing.T) {
	page, err := ParseGamePageHtml(testSelectors, validParts(
		uploadRow("all.zip", "2 MB", "", "icon-windows8", "icon-apple", "icon-tux", "icon-windows8"),
		uploadRow("none.zip", "2 MB", ""),
	).render())
	require.NoError(t, err)
	require.Equal(t, []Platform{PlatformWindows, PlatformMacOS, PlatformLinux}, page.Downloads[0].Platforms)
	require.Empty(t, page.Downloads[1].Platforms)
}

func TestParseGamePageRowErrors(t *testing.T) {
	good := uploadRow("good.zip", "1 MB", "1", "icon-windows8")

	testCases := []struct {
		name     string
		row      string
		expected error
	}{
		{
			name:     "missing title",
			row:      `<div class="upload"><span class="file_size"><span>1 MB</span></span><span class="download_platforms"></span></div>`,
			expected: ErrMissingTitle,
		},
		{
			name:     "empty title",
			row:      `<div class="upload"><strong class="name"></strong><span class="file_size"><span>1 MB</span></span><span class="download_platforms"></span></div>`,
			expected: ErrMissingTitle,
		},
		{
			name:     "missing file size",
			row:      `<div class="upload"><strong class="name">x.zip</strong><span class="download_platforms"></span></div>`,
			expected: ErrMissingFileSize,
		},
		{
			name:     "file size not in a span",
			row:      `<div class="upload"><strong class="name">x.zip</strong><span class="file_size">1 MB</span><span class="download_platforms"></span></div>`,
			expected: ErrMissingFileSize,
		},
		{
			name:     "invalid id",
			row:      uploadRow("x.zip", "1 MB", "abc", "icon-tux"),
			expected: ErrInvalidId,
		},
		{
			name:     "negative id",
			row:      uploadRow("x.zip", "1 MB", "-4", "icon-tux"),
			expected: ErrInvalidId,
		},
		{
			name:     "missing platforms",
			row:      `<div class="upload"><strong class="name">x.zip</strong><span class="file_size"><span>1 MB</span></span></div>`,
			expected: ErrMissingPlatforms,
		},
		{
			name:     "missing platform string",
			row:      uploadRow("x.zip", "1 MB", "1", "icon-tux", "platform"),
			expected: ErrMissingPlatformString,
		},
		{
			name:     "invalid platform string",
			row:      uploadRow("x.zip", "1 MB", "1", "icon-tux", "icon-android"),
			expected: ErrInvalidPlatformString,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			page, err := ParseGamePageHtml(testSelectors, validParts(good, test.row, good).render())
			require.ErrorIs(t, err, test.expected)
			require.ErrorIs(t, err, ErrInvalidGamePage)
			require.Empty(t, page.Downloads)

			var downloadErr *DownloadError
			require.True(t, errors.As(err, &downloadErr))
			require.Equal(t, 1, downloadErr.Index)
		})
	}
}

func TestParseGamePageFieldErrors(t *testing.T) {
	testCases := []struct {
		name     string
		parts    func(p gamePageParts) gamePageParts
		expected error
	}{
		{
			name:     "missing title",
			parts:    func(p gamePageParts) gamePageParts { p.title = ""; return p },
			expected: ErrMissingTitle,
		},
		{
			name:     "missing twitter url",
			parts:    func(p gamePageParts) gamePageParts { p.twitterUrl = ""; return p },
			expected: ErrMissingTwitterUrl,
		},
		{
			name:     "relative twitter url",
			parts:    func(p gamePageParts) gamePageParts { p.twitterUrl = "/doghouse-2"; return p },
			expected: ErrInvalidTwitterUrl,
		},
		{
			name:     "malformed twitter url",
			parts:    func(p gamePageParts) gamePageParts { p.twitterUrl = "http://[::1"; return p },
			expected: ErrInvalidTwitterUrl,
		},
		{
			name:     "missing csrf token",
			parts:    func(p gamePageParts) gamePageParts { p.csrfToken = ""; return p },
			expected: ErrMissingCsrfToken,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			parts := test.parts(validParts(uploadRow("x.zip", "1 MB", "1", "icon-tux")))
			page, err := ParseGamePageHtml(testSelectors, parts.render())
			require.ErrorIs(t, err, test.expected)
			require.ErrorIs(t, err, ErrInvalidGamePage)
			require.Equal(t, GamePage{}, page)
		})
	}
}

func viewHtml(placeholder string) string {
	return `<div class="view_html_game_page">` + placeholder + `</div>`
}

func TestParseGamePageViewHtml(t *testing.T) {
	testCases := []struct {
		name        string
		placeholder string
		expected    error
		url         string
	}{
		{
			name:        "valid",
			placeholder: `<div class="iframe_placeholder" data-iframe="&lt;iframe src=&quot;https://html.itch.zone/html/1/index.html&quot;&gt;&lt;/iframe&gt;"></div>`,
			url:         "https://html.itch.zone/html/1/index.html",
		},
		{
			name:        "missing data-iframe",
			placeholder: `<div class="iframe_placeholder"></div>`,
			expected:    ErrMissingIFrameData,
		},
		{
			name:        "fragment without iframe",
			placeholder: `<div class="iframe_placeholder" data-iframe="&lt;div&gt;no frame&lt;/div&gt;"></div>`,
			expected:    ErrMissingIFrameData,
		},
		{
			name:        "iframe without src",
			placeholder: `<div class="iframe_placeholder" data-iframe="&lt;iframe allowfullscreen&gt;&lt;/iframe&gt;"></div>`,
			expected:    ErrMissingIFrameDataSrc,
		},
		{
			name:        "relative src",
			placeholder: `<div class="iframe_placeholder" data-iframe="&lt;iframe src=&quot;/html/1/index.html&quot;&gt;&lt;/iframe&gt;"></div>`,
			expected:    ErrInvalidIFrameDataSrc,
		},
		{
			name:        "placeholder outside of view html container",
			placeholder: ``,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			parts := validParts()
			if test.placeholder != "" {
				parts.extra = viewHtml(test.placeholder)
			} else {
				parts.extra = `<div class="iframe_placeholder"></div>`
			}

			page, err := ParseGamePageHtml(testSelectors, parts.render())
			if test.expected != nil {
				require.ErrorIs(t, err, test.expected)
				require.ErrorIs(t, err, ErrInvalidGamePage)
				return
			}
			require.NoError(t, err)
			if test.url == "" {
				require.Nil(t, page.ViewHtmlUrl)
				return
			}
			require.NotNil(t, page.ViewHtmlUrl)
			require.Equal(t, test.url, page.ViewHtmlUrl.String())
		})
	}
}
