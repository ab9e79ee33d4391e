// client.go contains the requests made against itch.io, every method is a single
// round trip, see resolve.go for the logic that chains them together.

package itchio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"time"

	"itchscraper/internal/components/assert"
	"itchscraper/internal/components/httpdump"
	"itchscraper/internal/components/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("itchscraper/scrapers/itchio")

const (
	report_client_game_page        = "client.game-page"
	report_client_download_info    = "client.download-info"
	report_client_purchase_dialog  = "client.purchase-dialog"
	report_client_download_pageurl = "client.download-page-url"
	report_client_download_page    = "client.download-page"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type ClientOptions struct {
	// defaults to a desktop chrome user agent
	UserAgent string
	// defaults to 30 seconds
	Timeout time.Duration
	// 0 disables rate limiting
	RequestsPerSecond float64
	Burst             int
	// number of documents parsed at once, defaults to GOMAXPROCS
	ParseWorkers int
	// number of downloads ResolveAll works on at once, defaults to 4
	ResolveConcurrency int
	// defaults to NewSelectors()
	Selectors *Selectors
	// every http exchange is written to Dump if it is set
	Dump httpdump.Output
}

// Client talks to itch.io. The cookie jar is shared by every request so a
// Client must be reused across the steps of a resolution, it is safe for
// concurrent use.
type Client struct {
	http *resty.Client
	sel  *Selectors
	tel  telemetry.API

	parser             parsePool
	resolveConcurrency int
}

func NewClient(tel telemetry.API, opts ClientOptions) (*Client, error) {
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("itchio_scraper", tel)

	httpClient := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	assert.NotEmptyStr(userAgent)
	httpClient.SetHeader("user-agent", userAgent)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Second * 30
	}
	httpClient.SetTimeout(timeout)

	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel)
	if opts.Dump != nil {
		httpdump.Instrument(httpClient, opts.Dump)
	}

	sel := opts.Selectors
	if sel == nil {
		sel = NewSelectors()
	}
	resolveConcurrency := opts.ResolveConcurrency
	if resolveConcurrency <= 0 {
		resolveConcurrency = 4
	}

	return &Client{
		http:               httpClient,
		sel:                sel,
		tel:                tel,
		parser:             newParsePool(opts.ParseWorkers),
		resolveConcurrency: resolveConcurrency,
	}, nil
}

// fail reports err as broken and marks span as failed, it returns err unchanged.
func (c *Client) fail(span trace.Span, id string, err error, params ...any) error {
	c.tel.ReportBroken(id, append([]any{err}, params...)...)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func checkStatus(res *resty.Response) error {
	if res.IsSuccess() {
		return nil
	}
	return &StatusError{
		Method:     res.Request.Method,
		Url:        res.Request.URL,
		StatusCode: res.StatusCode(),
		Status:     res.Status(),
	}
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		return nil, err
	}
	err = checkStatus(res)
	if err != nil {
		return nil, err
	}
	return res.Body(), nil
}

func (c *Client) postForm(ctx context.Context, endpoint string, form map[string]string) ([]byte, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		Post(endpoint)
	if err != nil {
		return nil, err
	}
	err = checkStatus(res)
	if err != nil {
		return nil, err
	}
	return res.Body(), nil
}

func decodeJson[T any](body []byte) (T, error) {
	var out T
	err := json.Unmarshal(body, &out)
	if err != nil {
		return out, fmt.Errorf("unmarshal json: %w", err)
	}
	return out, nil
}

// gameEndpoint joins a game page url with a path of one of its endpoints.
func gameEndpoint(gamePageUrl, path string) string {
	return strings.TrimRight(gamePageUrl, "/") + path
}

// GamePage fetches and parses a game page, ex. https://tumblewed.itch.io/doghouse-2
func (c *Client) GamePage(ctx context.Context, pageUrl string) (GamePage, error) {
	ctx, span := tracer.Start(ctx, "client:GamePage", trace.WithAttributes(
		attribute.String("url", pageUrl),
	))
	defer span.End()

	c.tel.ReportDebug(report_client_game_page, pageUrl)

	body, err := c.get(ctx, pageUrl)
	if err != nil {
		return GamePage{}, c.fail(span, report_client_game_page, fmt.Errorf("fetch: %w", err), pageUrl)
	}

	page, err := runParse(ctx, c.parser, func() (GamePage, error) {
		return ParseGamePageHtml(c.sel, body)
	})
	if err != nil {
		return GamePage{}, c.fail(span, report_client_game_page, fmt.Errorf("parse: %w", err), pageUrl)
	}

	c.tel.ReportCount("client.game-page.downloads", int64(len(page.Downloads)))
	return page, nil
}

// DownloadInfo requests the download url of a single upload.
func (c *Client) DownloadInfo(ctx context.Context, gamePageUrl string, downloadId uint64, csrfToken string) (DownloadInfo, error) {
	ctx, span := tracer.Start(ctx, "client:DownloadInfo", trace.WithAttributes(
		attribute.String("url", gamePageUrl),
		attribute.String("download_id", strconv.FormatUint(downloadId, 10)),
	))
	defer span.End()

	endpoint := gameEndpoint(gamePageUrl, fmt.Sprintf("/file/%d?after_download_lightbox=true", downloadId))
	c.tel.ReportDebug(report_client_download_info, endpoint)

	body, err := c.postForm(ctx, endpoint, map[string]string{"csrf_token": csrfToken})
	if err != nil {
		return DownloadInfo{}, c.fail(span, report_client_download_info, fmt.Errorf("fetch: %w", err), endpoint)
	}
	info, err := decodeJson[DownloadInfo](body)
	if err != nil {
		return DownloadInfo{}, c.fail(span, report_client_download_info, err, endpoint)
	}
	return info, nil
}

// PurchaseDialog fetches the dialog shown when clicking "download now" on a
// game page.
func (c *Client) PurchaseDialog(ctx context.Context, gamePageUrl string) (PurchaseDialog, error) {
	ctx, span := tracer.Start(ctx, "client:PurchaseDialog", trace.WithAttributes(
		attribute.String("url", gamePageUrl),
	))
	defer span.End()

	endpoint := gameEndpoint(gamePageUrl, "/purchase?lightbox=true")
	c.tel.ReportDebug(report_client_purchase_dialog, endpoint)

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return PurchaseDialog{}, c.fail(span, report_client_purchase_dialog, fmt.Errorf("fetch: %w", err), endpoint)
	}
	dialog, err := decodeJson[PurchaseDialog](body)
	if err != nil {
		return PurchaseDialog{}, c.fail(span, report_client_purchase_dialog, err, endpoint)
	}
	return dialog, nil
}

// DownloadPageUrl requests the url of the download page of a game, this is
// needed when the game page does not carry upload ids.
func (c *Client) DownloadPageUrl(ctx context.Context, gamePageUrl, csrfToken string) (DownloadPageUrlInfo, error) {
	ctx, span := tracer.Start(ctx, "client:DownloadPageUrl", trace.WithAttributes(
		attribute.String("url", gamePageUrl),
	))
	defer span.End()

	endpoint := gameEndpoint(gamePageUrl, "/download_url")
	c.tel.ReportDebug(report_client_download_pageurl, endpoint)

	body, err := c.postForm(ctx, endpoint, map[string]string{"csrf_token": csrfToken})
	if err != nil {
		return DownloadPageUrlInfo{}, c.fail(span, report_client_download_pageurl, fmt.Errorf("fetch: %w", err), endpoint)
	}
	info, err := decodeJson[DownloadPageUrlInfo](body)
	if err != nil {
		return DownloadPageUrlInfo{}, c.fail(span, report_client_download_pageurl, err, endpoint)
	}
	return info, nil
}

// DownloadPage fetches and parses a download page, pageUrl should come from
// DownloadPageUrl.
func (c *Client) DownloadPage(ctx context.Context, pageUrl string) (DownloadPage, error) {
	ctx, span := tracer.Start(ctx, "client:DownloadPage", trace.WithAttributes(
		attribute.String("url", pageUrl),
	))
	defer span.End()

	c.tel.ReportDebug(report_client_download_page, pageUrl)

	body, err := c.get(ctx, pageUrl)
	if err != nil {
		return DownloadPage{}, c.fail(span, report_client_download_page, fmt.Errorf("fetch: %w", err), pageUrl)
	}

	page, err := runParse(ctx, c.parser, func() (DownloadPage, error) {
		return ParseDownloadPageHtml(c.sel, body)
	})
	if err != nil {
		return DownloadPage{}, c.fail(span, report_client_download_page, fmt.Errorf("parse: %w", err), pageUrl)
	}
	return page, nil
}
