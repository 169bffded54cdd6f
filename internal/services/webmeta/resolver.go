package webmeta

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"playbridge/internal/playlist"
	"playbridge/internal/services"
)

const (
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"
	maxPageBytes     = 8 << 20
)

// HTTPDoer describes the HTTP client used by the resolver.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures the resolver.
type Option func(*Resolver)

// WithHTTPClient injects a custom HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(r *Resolver) {
		if client != nil {
			r.client = client
		}
	}
}

// WithUserAgent overrides the User-Agent header sent with each request.
func WithUserAgent(agent string) Option {
	return func(r *Resolver) {
		if agent = strings.TrimSpace(agent); agent != "" {
			r.userAgent = agent
		}
	}
}

// WithTimeout bounds each page fetch.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Resolver) {
		r.timeout = timeout
	}
}

// Resolver fetches watch pages and extracts metadata from their meta tags.
type Resolver struct {
	client    HTTPDoer
	userAgent string
	timeout   time.Duration
}

// New constructs a resolver backed by http.DefaultClient.
func New(opts ...Option) *Resolver {
	r := &Resolver{client: http.DefaultClient, userAgent: defaultUserAgent}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve fetches pageURL and parses its metadata.
func (r *Resolver) Resolve(ctx context.Context, pageURL string) (*playlist.Metadata, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "webmeta", "build request", pageURL, err)
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept-Language", "en")

	resp, err := r.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, services.Wrap(services.ErrTimeout, "webmeta", "fetch", pageURL, err)
		}
		return nil, services.Wrap(services.ErrExternalTool, "webmeta", "fetch", pageURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, services.Wrap(services.ErrExternalTool, "webmeta", "fetch",
			fmt.Sprintf("%s returned %d", pageURL, resp.StatusCode), nil)
	}
	return Parse(pageURL, io.LimitReader(resp.Body, maxPageBytes))
}

// Parse extracts metadata from an HTML page. A page without any title is an
// error so callers fall back to placeholders.
func Parse(pageURL string, body io.Reader) (*playlist.Metadata, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "webmeta", "parse", pageURL, err)
	}

	meta := &playlist.Metadata{
		Title:        firstNonEmpty(metaContent(doc, `meta[property="og:title"]`), metaContent(doc, `meta[name="title"]`), normSpace(doc.Find("title").First().Text())),
		ThumbnailURL: resolveURL(pageURL, metaContent(doc, `meta[property="og:image"]`)),
		AuthorID:     metaContent(doc, `meta[itemprop="channelId"]`),
	}
	if meta.Title == "" {
		return nil, services.Wrap(services.ErrExternalTool, "webmeta", "parse", pageURL+" has no title", nil)
	}

	author := doc.Find(`[itemprop="author"]`).First()
	meta.Author = firstNonEmpty(
		attr(author.Find(`[itemprop="name"]`).First(), "content"),
		metaContent(doc, `meta[name="author"]`),
		metaContent(doc, `meta[property="og:site_name"]`),
		siteName(pageURL),
	)
	meta.AuthorURL = resolveURL(pageURL, attr(author.Find(`[itemprop="url"]`).First(), "href"))
	meta.DurationSeconds = parseISODuration(metaContent(doc, `meta[itemprop="duration"]`))
	meta.ViewCount, _ = strconv.ParseInt(metaContent(doc, `meta[itemprop="interactionCount"]`), 10, 64)
	meta.PublishedAtMillis = parseDate(firstNonEmpty(
		metaContent(doc, `meta[itemprop="datePublished"]`),
		metaContent(doc, `meta[itemprop="uploadDate"]`),
	))
	return meta, nil
}

func metaContent(doc *goquery.Document, selector string) string {
	return attr(doc.Find(selector).First(), "content")
}

func attr(s *goquery.Selection, name string) string {
	value, _ := s.Attr(name)
	return normSpace(value)
}

func normSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func resolveURL(base, href string) string {
	if href == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}

// siteName turns "www.odysee.com" into "Odysee".
func siteName(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	labels := strings.Split(strings.TrimPrefix(u.Hostname(), "www."), ".")
	if len(labels) > 1 {
		labels = labels[:len(labels)-1]
	}
	return cases.Title(language.Und).String(strings.Join(labels, " "))
}

var isoDurationRe = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseISODuration converts values such as PT4M13S to seconds.
func parseISODuration(value string) int64 {
	m := isoDurationRe.FindStringSubmatch(strings.ToUpper(value))
	if m == nil {
		return 0
	}
	var total int64
	for i, unit := range []int64{86400, 3600, 60, 1} {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.ParseInt(m[i+1], 10, 64)
		if err != nil {
			return 0
		}
		total += n * unit
	}
	return total
}

func parseDate(value string) int64 {
	if value == "" {
		return 0
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}
