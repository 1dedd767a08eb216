package osm

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmapi"

	"github.com/matzehuels/roadnet/pkg/errors"
	"github.com/matzehuels/roadnet/pkg/geo"
	"github.com/matzehuels/roadnet/pkg/graph"
	"github.com/matzehuels/roadnet/pkg/httputil"
)

// Defaults for FetchOptions.
const (
	DefaultBaseURL   = "https://api.openstreetmap.org/api/0.6"
	DefaultTimeout   = 60 * time.Second
	DefaultUserAgent = "roadnet"
	DefaultAttempts  = 3
	DefaultDelay     = time.Second
	DefaultMaxDelay  = 30 * time.Second

	// MaxArea is the largest bbox, in square degrees, the OSM API accepts.
	MaxArea = 0.25
)

// FetchOptions configures a Fetcher.
type FetchOptions struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Attempts  int           // Total tries per request, including the first
	Delay     time.Duration // Initial backoff delay, doubled after each retry
	Transport http.RoundTripper
}

func (o FetchOptions) withDefaults() FetchOptions {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Attempts <= 0 {
		o.Attempts = DefaultAttempts
	}
	if o.Delay <= 0 {
		o.Delay = DefaultDelay
	}
	if o.Transport == nil {
		o.Transport = http.DefaultTransport
	}
	return o
}

// Fetcher downloads road graphs from the OSM API.
type Fetcher struct {
	ds   *osmapi.Datasource
	opts FetchOptions
}

// NewFetcher creates a Fetcher. Zero-valued options take their defaults.
func NewFetcher(opts FetchOptions) *Fetcher {
	opts = opts.withDefaults()
	client := &http.Client{
		Timeout:   opts.Timeout,
		Transport: &transport{base: opts.Transport, userAgent: opts.UserAgent},
	}
	ds := osmapi.NewDatasource(client)
	ds.BaseURL = opts.BaseURL
	return &Fetcher{ds: ds, opts: opts}
}

// FetchRoadGraph downloads the map data inside b and builds its road graph.
func (f *Fetcher) FetchRoadGraph(ctx context.Context, b geo.Bounds, opts BuildOptions) (*graph.Graph, error) {
	if err := errors.ValidateBounds(b.MinLon, b.MinLat, b.MaxLon, b.MaxLat, MaxArea); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidBounds, err, "bbox %s", b).InStage(errors.StageFetch)
	}
	data, err := f.FetchMap(ctx, b)
	if err != nil {
		return nil, err
	}
	return Build(data, opts), nil
}

// FetchMap downloads the raw OSM data inside b.
func (f *Fetcher) FetchMap(ctx context.Context, b geo.Bounds) (*osm.OSM, error) {
	bounds := &osm.Bounds{MinLat: b.MinLat, MaxLat: b.MaxLat, MinLon: b.MinLon, MaxLon: b.MaxLon}

	var data *osm.OSM
	backoff := httputil.Backoff{Attempts: f.opts.Attempts, Delay: f.opts.Delay, MaxDelay: DefaultMaxDelay}
	err := backoff.Do(ctx, func(int) error {
		o, err := f.ds.Map(ctx, bounds)
		if err != nil {
			return classify(ctx, err)
		}
		data = o
		return nil
	})
	if err != nil {
		return nil, unwrapRetryable(err, b)
	}
	return data, nil
}

// classify maps an osmapi failure to a roadnet error, marking transient
// failures as retryable.
func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return errors.Wrap(errors.ErrCodeTimeout, err, "request cancelled")
	}

	var status *osmapi.UnexpectedStatusCodeError
	if stderrors.As(err, &status) {
		switch {
		case status.Code == http.StatusTooManyRequests:
			return httputil.Retryable(errors.Wrap(errors.ErrCodeRateLimited, err, "osm api rate limit"))
		case status.Code == http.StatusBadRequest:
			// The API answers 400 when the area holds too many nodes.
			return errors.Wrap(errors.ErrCodeInvalidBounds, err, "osm api rejected the bounding box")
		case status.Code >= 500:
			return httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "osm api status %d", status.Code))
		default:
			return errors.Wrap(errors.ErrCodeNetwork, err, "osm api status %d", status.Code)
		}
	}
	return httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "osm api request"))
}

func unwrapRetryable(err error, b geo.Bounds) error {
	var r *httputil.RetryableError
	if stderrors.As(err, &r) {
		err = r.Err
	}
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.InStage(errors.StageFetch)
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(errors.ErrCodeTimeout, err, "fetch %s", b).InStage(errors.StageFetch)
	}
	return errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", b).InStage(errors.StageFetch)
}
