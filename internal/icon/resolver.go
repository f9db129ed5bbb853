// Package icon resolves a remote server address to a publicly hosted icon
// image that the presence peer can render.
package icon

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultEndpoint  = "https://api.mcsrvstat.us/icon"
	DefaultTimeout   = 3 * time.Second
	DefaultUserAgent = "VoxelClient-DiscordRPC/1.0"
)

type Options struct {
	Endpoint   string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// Resolver probes the icon service with HEAD requests.
type Resolver struct {
	endpoint  string
	timeout   time.Duration
	userAgent string
	client    *http.Client
	log       zerolog.Logger
}

func New(opts Options) *Resolver {
	r := &Resolver{
		endpoint:  strings.TrimRight(opts.Endpoint, "/"),
		timeout:   opts.Timeout,
		userAgent: opts.UserAgent,
		client:    opts.HTTPClient,
		log:       log.Logger,
	}
	if r.endpoint == "" {
		r.endpoint = DefaultEndpoint
	}
	if r.timeout <= 0 {
		r.timeout = DefaultTimeout
	}
	if r.userAgent == "" {
		r.userAgent = DefaultUserAgent
	}
	if r.client == nil {
		r.client = &http.Client{Timeout: r.timeout}
	}
	if opts.Logger != nil {
		r.log = *opts.Logger
	}
	return r
}

// URL returns the probe URL for address, or "" if there is no host.
func (r *Resolver) URL(address string) string {
	host := StripPort(address)
	if host == "" {
		return ""
	}
	return r.endpoint + "/" + url.PathEscape(host)
}

// Resolve returns the icon URL only when the service answers 2xx with an
// image content type. It never fails: every problem yields ("", false).
func (r *Resolver) Resolve(ctx context.Context, address string) (string, bool) {
	iconURL := r.URL(address)
	if iconURL == "" {
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, iconURL, nil)
	if err != nil {
		r.log.Warn().Err(err).Str("url", iconURL).Msg("icon probe request failed")
		return "", false
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		r.log.Warn().Err(err).Str("url", iconURL).Msg("icon probe failed")
		return "", false
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if resp.StatusCode < 200 || resp.StatusCode > 299 || !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		r.log.Debug().
			Int("status", resp.StatusCode).
			Str("content_type", contentType).
			Str("url", iconURL).
			Msg("icon not available")
		return "", false
	}
	return iconURL, true
}

// StripPort drops a trailing ":port" from a server address.
func StripPort(address string) string {
	address = strings.TrimSpace(address)
	if address == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(address); err == nil {
		return host
	}
	if strings.HasPrefix(address, "[") && strings.HasSuffix(address, "]") {
		return address[1 : len(address)-1]
	}
	host, _, _ := strings.Cut(address, ":")
	return strings.TrimSpace(host)
}
