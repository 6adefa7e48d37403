// Package publicurl maps object store keys to URLs clients can fetch.
// Resolution is pure string work and never fails.
package publicurl

import (
	"net/url"
	"strings"
)

type Resolver interface {
	// Resolve returns the public URL for key. origin is the scheme://host of
	// the current request; strategies that do not need it ignore it.
	Resolve(origin, key string) string
}

const (
	ModeBucket      = "bucket"
	ModePassthrough = "passthrough"

	DefaultRoutePrefix = "/images/"
)

// Bucket serves keys straight from a public bucket/CDN base URL.
type Bucket struct {
	BaseURL string
}

func (b Bucket) Resolve(_, key string) string {
	return strings.TrimSuffix(b.BaseURL, "/") + "/" + strings.TrimPrefix(key, "/")
}

// Passthrough serves keys through this service's own image route.
type Passthrough struct {
	RoutePrefix string
}

func (p Passthrough) Resolve(origin, key string) string {
	prefix := p.RoutePrefix
	if prefix == "" {
		prefix = DefaultRoutePrefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return strings.TrimSuffix(origin, "/") + prefix + EscapeKey(key)
}

// EscapeKey percent-encodes each path segment of key, decoding any existing
// escapes first so already-encoded keys are not double-encoded.
func EscapeKey(key string) string {
	segs := strings.Split(strings.TrimPrefix(key, "/"), "/")
	for i, s := range segs {
		if dec, err := url.PathUnescape(s); err == nil {
			s = dec
		}
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

// New picks a strategy by mode name, defaulting to passthrough when no
// bucket URL is configured.
func New(mode, bucketURL, routePrefix string) Resolver {
	if strings.EqualFold(mode, ModeBucket) && bucketURL != "" {
		return Bucket{BaseURL: bucketURL}
	}
	return Passthrough{RoutePrefix: routePrefix}
}
