// Package videoref resolves the caller's video reference into the URI the
// model endpoint accepts. It never downloads or probes video content.
package videoref

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Kind names the supported video source families.
type Kind string

const (
	KindYouTube     Kind = "youtube"
	KindCloudObject Kind = "cloud-object"
	KindDirectURL   Kind = "direct-url"
)

// ErrUnsupported tags references a given API mode cannot process.
var ErrUnsupported = errors.New("unsupported video reference")

// Ref is an opaque, already-located video reference.
type Ref struct {
	Kind Kind
	URI  string
}

// FromYouTubeID builds a reference from a bare YouTube video id.
func FromYouTubeID(id string) (Ref, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Ref{}, fmt.Errorf("%w: empty youtube id", ErrUnsupported)
	}
	return Ref{Kind: KindYouTube, URI: "https://www.youtube.com/watch?v=" + url.QueryEscape(id)}, nil
}

// FromCloudObject builds a gs:// reference from a bucket and object path.
func FromCloudObject(bucket, path string) (Ref, error) {
	bucket = strings.TrimSpace(bucket)
	path = strings.TrimPrefix(strings.TrimSpace(path), "/")
	if bucket == "" || path == "" {
		return Ref{}, fmt.Errorf("%w: cloud object needs bucket and path", ErrUnsupported)
	}
	return Ref{Kind: KindCloudObject, URI: "gs://" + bucket + "/" + path}, nil
}

// Parse classifies a raw reference string.
func Parse(raw string) (Ref, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return Ref{}, fmt.Errorf("%w: empty reference", ErrUnsupported)
	case strings.HasPrefix(raw, "gs://"):
		rest := strings.TrimPrefix(raw, "gs://")
		if !strings.Contains(rest, "/") {
			return Ref{}, fmt.Errorf("%w: cloud object %q missing object path", ErrUnsupported, raw)
		}
		return Ref{Kind: KindCloudObject, URI: raw}, nil
	case isYouTubeURL(raw):
		return Ref{Kind: KindYouTube, URI: raw}, nil
	case strings.HasPrefix(raw, "https://"), strings.HasPrefix(raw, "http://"):
		return Ref{Kind: KindDirectURL, URI: raw}, nil
	default:
		// A bare token is taken as a YouTube video id.
		return FromYouTubeID(raw)
	}
}

func isYouTubeURL(raw string) bool {
	return strings.HasPrefix(raw, "https://www.youtube.com/watch?v=") ||
		strings.HasPrefix(raw, "https://youtu.be/")
}

// ResolveFor rewrites the reference for the selected API mode. The Vertex
// platform takes every supported kind natively; the hosted API takes YouTube
// watch URLs only.
func (r Ref) ResolveFor(vertex bool) (string, error) {
	if vertex {
		return r.URI, nil
	}
	if r.Kind != KindYouTube {
		return "", fmt.Errorf("%w: hosted API accepts YouTube URLs only, got %s", ErrUnsupported, r.Kind)
	}
	return r.URI, nil
}
