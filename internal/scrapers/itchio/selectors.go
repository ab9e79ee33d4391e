package itchio

import "github.com/andybalholm/cascadia"

// Selectors holds every compiled selector used to read itch.io pages.
//
// It is built once with NewSelectors and shared by reference, it is never
// mutated after construction so it is safe for concurrent use.
type Selectors struct {
	GameTitle  cascadia.Selector
	TwitterUrl cascadia.Selector
	CsrfToken  cascadia.Selector

	DownloadRow    cascadia.Selector
	DownloadButton cascadia.Selector
	DownloadTitle  cascadia.Selector
	FileSize       cascadia.Selector
	Platforms      cascadia.Selector
	PlatformIcon   cascadia.Selector

	ViewHtml cascadia.Selector
	IFrame   cascadia.Selector
}

// NewSelectors compiles the selector set, a malformed selector panics.
func NewSelectors() *Selectors {
	return &Selectors{
		GameTitle:  cascadia.MustCompile(".game_title"),
		TwitterUrl: cascadia.MustCompile(`meta[name="twitter:url"]`),
		CsrfToken:  cascadia.MustCompile(`meta[name="csrf_token"]`),

		DownloadRow:    cascadia.MustCompile(".upload"),
		DownloadButton: cascadia.MustCompile(".download_btn"),
		DownloadTitle:  cascadia.MustCompile(".name"),
		FileSize:       cascadia.MustCompile(".file_size > span"),
		Platforms:      cascadia.MustCompile(".download_platforms"),
		PlatformIcon:   cascadia.MustCompile("span.icon"),

		ViewHtml: cascadia.MustCompile(".view_html_game_page .iframe_placeholder"),
		IFrame:   cascadia.MustCompile("iframe"),
	}
}
