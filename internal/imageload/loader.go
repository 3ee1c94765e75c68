// Package imageload acquires the images referenced by designs: local files,
// data URIs, remote URLs fetched directly, and storage-domain URLs fetched
// through the authenticated image proxy.
package imageload

import (
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"photobook-render/internal/logger"
)

// Loader resolves an image reference to a decoded image.
type Loader interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

// ImageLoadError wraps any failure to obtain one image.
type ImageLoadError struct {
	Ref string
	Err error
}

func (e *ImageLoadError) Error() string {
	return fmt.Sprintf("imageload: %s: %v", e.Ref, e.Err)
}

func (e *ImageLoadError) Unwrap() error { return e.Err }

// maxBody caps a single fetched image.
const maxBody = 64 << 20

// Fetcher is the default Loader.
type Fetcher struct {
	Client *http.Client

	// ProxyURL is the authenticated proxy endpoint; the source URL is passed
	// in its "url" query parameter.
	ProxyURL string
	// ProxyHost is the cross-origin storage domain that must go through the
	// proxy.
	ProxyHost string
	// AppOrigin is this application's own origin; same-origin URLs never use
	// the proxy.
	AppOrigin string
	// Token returns the bearer token for proxy requests.
	Token func(ctx context.Context) (string, error)

	// BaseDir resolves relative file references.
	BaseDir string
	// Store optionally caches fetched bytes across runs.
	Store ByteStore

	Log *logger.Logger
}

// NewFetcher returns a Fetcher with a default HTTP client.
func NewFetcher(log *logger.Logger) *Fetcher {
	return &Fetcher{Client: &http.Client{}, Log: logger.OrNop(log)}
}

// Load implements Loader. Every error is an *ImageLoadError.
func (f *Fetcher) Load(ctx context.Context, ref string) (image.Image, error) {
	data, err := f.bytes(ctx, ref)
	if err != nil {
		return nil, &ImageLoadError{Ref: ref, Err: err}
	}
	img, err := Decode(data, ref)
	if err != nil {
		return nil, &ImageLoadError{Ref: ref, Err: err}
	}
	return img, nil
}

func (f *Fetcher) bytes(ctx context.Context, ref string) ([]byte, error) {
	switch {
	case strings.HasPrefix(ref, "data:"):
		return decodeDataURI(ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return f.remote(ctx, ref)
	case strings.HasPrefix(ref, "file://"):
		return os.ReadFile(strings.TrimPrefix(ref, "file://"))
	}
	p := ref
	if !filepath.IsAbs(p) && f.BaseDir != "" {
		p = filepath.Join(f.BaseDir, p)
	}
	return os.ReadFile(p)
}

func (f *Fetcher) remote(ctx context.Context, ref string) ([]byte, error) {
	if f.Store != nil {
		if data, ok, err := f.Store.Get(ctx, ref); err != nil {
			f.log().Warn("image cache read failed", "ref", ref, "error", err)
		} else if ok {
			return data, nil
		}
	}

	var data []byte
	var err error
	if f.viaProxy(ref) {
		data, err = f.proxied(ctx, ref)
		if err != nil {
			f.log().Warn("proxy fetch failed, loading directly", "ref", ref, "error", err)
			data, err = f.get(ctx, ref, "")
		}
	} else {
		data, err = f.get(ctx, ref, "")
	}
	if err != nil {
		return nil, err
	}

	if f.Store != nil {
		if err := f.Store.Set(ctx, ref, data); err != nil {
			f.log().Warn("image cache write failed", "ref", ref, "error", err)
		}
	}
	return data, nil
}

// viaProxy reports whether ref is a cross-origin URL on the storage domain.
func (f *Fetcher) viaProxy(ref string) bool {
	if f.ProxyURL == "" || f.ProxyHost == "" {
		return false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	if f.AppOrigin != "" {
		if o, err := url.Parse(f.AppOrigin); err == nil && strings.EqualFold(o.Host, u.Host) {
			return false
		}
	}
	host := strings.ToLower(u.Hostname())
	dom := strings.ToLower(f.ProxyHost)
	return host == dom || strings.HasSuffix(host, "."+dom)
}

func (f *Fetcher) proxied(ctx context.Context, ref string) ([]byte, error) {
	pu, err := url.Parse(f.ProxyURL)
	if err != nil {
		return nil, err
	}
	q := pu.Query()
	q.Set("url", ref)
	pu.RawQuery = q.Encode()

	token := ""
	if f.Token != nil {
		if token, err = f.Token(ctx); err != nil {
			return nil, fmt.Errorf("proxy token: %w", err)
		}
	}
	return f.get(ctx, pu.String(), token)
}

func (f *Fetcher) get(ctx context.Context, u, token string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "image/*")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			f.log().Warn("close image body", "error", err)
		}
	}()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP status %d", res.StatusCode)
	}
	return io.ReadAll(io.LimitReader(res.Body, maxBody))
}

func (f *Fetcher) log() *logger.Logger {
	if f.Log == nil {
		f.Log = logger.Nop()
	}
	return f.Log
}

// decodeDataURI handles "data:[<mime>][;base64],<payload>".
func decodeDataURI(ref string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URI")
	}
	if strings.HasSuffix(meta, ";base64") {
		return base64.StdEncoding.DecodeString(payload)
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}
