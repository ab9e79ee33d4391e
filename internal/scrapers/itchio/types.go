package itchio

import (
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
)

// DownloadInfo is the response of the download lightbox for one upload.
type DownloadInfo struct {
	External bool
	Lightbox string
	// Url is where the upload's bytes can be fetched from.
	Url *url.URL
}

func (d *DownloadInfo) UnmarshalJSON(data []byte) error {
	var raw struct {
		External bool   `json:"external"`
		Lightbox string `json:"lightbox"`
		Url      string `json:"url"`
	}
	err := json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}
	parsed, err := parseAbsoluteUrl(raw.Url)
	if err != nil {
		return fmt.Errorf("download info url: %w", err)
	}
	*d = DownloadInfo{
		External: raw.External,
		Lightbox: raw.Lightbox,
		Url:      parsed,
	}
	return nil
}

// DownloadPageUrlInfo is the response of {gamePageUrl}/download_url.
type DownloadPageUrlInfo struct {
	Url *url.URL
}

func (d *DownloadPageUrlInfo) UnmarshalJSON(data []byte) error {
	var raw struct {
		Url string `json:"url"`
	}
	err := json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}
	parsed, err := parseAbsoluteUrl(raw.Url)
	if err != nil {
		return fmt.Errorf("download page url: %w", err)
	}
	d.Url = parsed
	return nil
}

// PurchaseDialog is the lightbox shown when clicking "download now", its
// fields are kept as raw json.
type PurchaseDialog struct {
	Fields map[string]json.RawMessage
}

func (p *PurchaseDialog) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &p.Fields)
}

func (p PurchaseDialog) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Fields)
}

// Lightbox returns the dialog's html if the response carried one.
func (p PurchaseDialog) Lightbox() (string, bool) {
	raw, ok := p.Fields["lightbox"]
	if !ok {
		return "", false
	}
	var html string
	err := json.Unmarshal(raw, &html)
	if err != nil {
		return "", false
	}
	return html, true
}

// FieldNames lists the top level fields in sorted order.
func (p PurchaseDialog) FieldNames() []string {
	names := make([]string, 0, len(p.Fields))
	for k := range p.Fields {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}
