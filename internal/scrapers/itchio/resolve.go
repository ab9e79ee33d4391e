package itchio

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	report_resolve_download_id = "resolve.download-id"
	report_resolve_all         = "resolve.all"
)

// ResolvedDownload is a download whose id is known along with where its bytes
// can be fetched from.
type ResolvedDownload struct {
	Download GameDownload
	Id       uint64
	Info     DownloadInfo
}

type downloadPageLookup func(ctx context.Context) (DownloadPage, error)

// lookupDownloadPage performs one round of download_url -> download page.
func (c *Client) lookupDownloadPage(ctx context.Context, page GamePage) (DownloadPage, error) {
	info, err := c.DownloadPageUrl(ctx, page.CanonicalUrl.String(), page.CsrfToken)
	if err != nil {
		return DownloadPage{}, err
	}
	return c.DownloadPage(ctx, info.Url.String())
}

func (c *Client) resolveDownloadId(ctx context.Context, download GameDownload, lookup downloadPageLookup) (uint64, error) {
	if download.Id != nil {
		return *download.Id, nil
	}

	c.tel.ReportDebug(report_resolve_download_id, "id not on game page", download.Title)

	downloadPage, err := lookup(ctx)
	if err != nil {
		return 0, err
	}
	entry, err := downloadPage.FindDownloadByTitle(download.Title)
	if err != nil {
		c.tel.ReportBroken(report_resolve_download_id, err, len(downloadPage.Downloads))
		return 0, err
	}
	return entry.Id, nil
}

// ResolveDownloadId returns the id of download, which must come from page.
//
// If the game page did not carry the id, the download page is fetched and
// searched for an entry with the exact same title. There is no retry, any
// failure is returned as is.
func (c *Client) ResolveDownloadId(ctx context.Context, page GamePage, download GameDownload) (uint64, error) {
	ctx, span := tracer.Start(ctx, "resolve:ResolveDownloadId", trace.WithAttributes(
		attribute.String("title", download.Title),
	))
	defer span.End()

	return c.resolveDownloadId(ctx, download, func(ctx context.Context) (DownloadPage, error) {
		return c.lookupDownloadPage(ctx, page)
	})
}

// ResolveDownload resolves the id of download and requests its download info.
func (c *Client) ResolveDownload(ctx context.Context, page GamePage, download GameDownload) (ResolvedDownload, error) {
	id, err := c.ResolveDownloadId(ctx, page, download)
	if err != nil {
		return ResolvedDownload{}, err
	}
	info, err := c.DownloadInfo(ctx, page.CanonicalUrl.String(), id, page.CsrfToken)
	if err != nil {
		return ResolvedDownload{}, err
	}
	return ResolvedDownload{Download: download, Id: id, Info: info}, nil
}

// ResolveAll resolves every download of page concurrently, results keep the
// order of page.Downloads. The download page is fetched at most once and only
// if some download is missing its id. The first error cancels the rest.
func (c *Client) ResolveAll(ctx context.Context, page GamePage) ([]ResolvedDownload, error) {
	ctx, span := tracer.Start(ctx, "resolve:ResolveAll", trace.WithAttributes(
		attribute.String("url", page.CanonicalUrl.String()),
		attribute.Int("downloads", len(page.Downloads)),
	))
	defer span.End()

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(c.resolveConcurrency)

	lookupOnce := sync.OnceValues(func() (DownloadPage, error) {
		return c.lookupDownloadPage(egctx, page)
	})
	lookup := func(context.Context) (DownloadPage, error) {
		return lookupOnce()
	}

	gameUrl := page.CanonicalUrl.String()
	results := make([]ResolvedDownload, len(page.Downloads))
	for i, download := range page.Downloads {
		eg.Go(func() error {
			id, err := c.resolveDownloadId(egctx, download, lookup)
			if err != nil {
				return fmt.Errorf("resolve '%s': %w", download.Title, err)
			}
			info, err := c.DownloadInfo(egctx, gameUrl, id, page.CsrfToken)
			if err != nil {
				return fmt.Errorf("download info '%s': %w", download.Title, err)
			}
			results[i] = ResolvedDownload{Download: download, Id: id, Info: info}
			return nil
		})
	}

	err := eg.Wait()
	if err != nil {
		return nil, c.fail(span, report_resolve_all, err, gameUrl)
	}

	c.tel.ReportCount(report_resolve_all, int64(len(results)))
	return results, nil
}
