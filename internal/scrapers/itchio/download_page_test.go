package itchio

import (
	"errors"
	"testing"

	_ "embed"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/download_page.html
var downloadPageTest []byte

func downloadPageHtml(rows ...string) []byte {
	return gamePageParts{rows: rows}.render()
}

func TestParseDownloadPageFixture(t *testing.T) {
	page, err := ParseDownloadPageHtml(testSelectors, downloadPageTest)
	require.NoError(t, err)

	expected := DownloadPage{Downloads: []DownloadPageEntry{
		{Title: "RollRacer-win.zip", SizeText: "120 MB", Id: 501, Platforms: []Platform{PlatformWindows}},
		{Title: "RollRacer-linux.tar.gz", SizeText: "118 MB", Id: 502, Platforms: []Platform{PlatformLinux}},
		{Title: "RollRacer-mac.zip", SizeText: "512 kB", Id: 777, Platforms: []Platform{PlatformMacOS}},
		{Title: "RollRacer-win.zip", SizeText: "119 MB", Id: 599, Platforms: []Platform{PlatformWindows}},
	}}
	diff := cmp.Diff(expected, page)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestParseDownloadPageRowErrors(t *testing.T) {
	good := uploadRow("good.zip", "1 MB", "1", "icon-windows8")

	testCases := []struct {
		name     string
		row      string
		expected error
	}{
		{name: "missing id", row: uploadRow("x.zip", "1 MB", "", "icon-tux"), expected: ErrMissingId},
		{name: "invalid id", row: uploadRow("x.zip", "1 MB", "12a", "icon-tux"), expected: ErrInvalidId},
		{name: "invalid platform", row: uploadRow("x.zip", "1 MB", "3", "icon-beos"), expected: ErrInvalidPlatformString},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			page, err := ParseDownloadPageHtml(testSelectors, downloadPageHtml(good, good, test.row))
			require.ErrorIs(t, err, test.expected)
			require.ErrorIs(t, err, ErrInvalidDownloadPage)
			require.Empty(t, page.Downloads)

			var downloadErr *DownloadError
			require.True(t, errors.As(err, &downloadErr))
			require.Equal(t, 2, downloadErr.Index)
		})
	}
}

func TestFindDownloadByTitle(t *testing.T) {
	page, err := ParseDownloadPageHtml(testSelectors, downloadPageTest)
	require.NoError(t, err)

	entry, err := page.FindDownloadByTitle("RollRacer-linux.tar.gz")
	require.NoError(t, err)
	require.Equal(t, uint64(502), entry.Id)

	// duplicate titles resolve to the first in document order
	entry, err = page.FindDownloadByTitle("RollRacer-win.zip")
	require.NoError(t, err)
	require.Equal(t, uint64(501), entry.Id)

	_, err = page.FindDownloadByTitle("rollracer-win.zip")
	require.ErrorIs(t, err, ErrNoMatchingDownload)

	var noMatch *NoMatchingDownloadError
	require.True(t, errors.As(err, &noMatch))
	require.Equal(t, "rollracer-win.zip", noMatch.Title)
}
