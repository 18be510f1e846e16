// Package blobstore implements domain.BlobRepository on object storage:
// S3-compatible stores, Google Cloud Storage and Azure Blob Storage. Each
// backend maps its native conditional-write token (ETag or generation) onto
// the blob version.
package blobstore

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Scheme identifies an object storage backend.
type Scheme string

// Supported location schemes.
const (
	SchemeS3    Scheme = "s3"
	SchemeGCS   Scheme = "gs"
	SchemeAzure Scheme = "az"
)

// Location is a bucket (or container) plus a key prefix under which every
// blob is stored.
type Location struct {
	Scheme Scheme
	Bucket string
	Prefix string
}

// ParseLocation parses a storage URI.
//
// Supported formats:
//
//	s3://bucket/prefix
//	gs://bucket/prefix
//	az://container/prefix
//	abfss://container@account.dfs.core.windows.net/prefix
//	https://account.blob.core.windows.net/container/prefix
//
// The prefix may be empty.
func ParseLocation(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("parse storage location %q: %w", raw, err)
	}

	var loc Location
	switch u.Scheme {
	case "s3":
		loc = Location{Scheme: SchemeS3, Bucket: u.Host, Prefix: u.Path}
	case "gs":
		loc = Location{Scheme: SchemeGCS, Bucket: u.Host, Prefix: u.Path}
	case "az":
		loc = Location{Scheme: SchemeAzure, Bucket: u.Host, Prefix: u.Path}
	case "abfss":
		// url.Parse reads "container" as userinfo and the account as host.
		if u.User == nil {
			return Location{}, fmt.Errorf("abfss location %q missing container@account component", raw)
		}
		loc = Location{Scheme: SchemeAzure, Bucket: u.User.Username(), Prefix: u.Path}
	case "https":
		if !strings.Contains(u.Host, ".blob.core.windows.net") {
			return Location{}, fmt.Errorf("unrecognized Azure HTTPS host %q in %q", u.Host, raw)
		}
		container, prefix, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
		loc = Location{Scheme: SchemeAzure, Bucket: container, Prefix: prefix}
	default:
		return Location{}, fmt.Errorf("unsupported storage scheme %q in %q", u.Scheme, raw)
	}

	if loc.Bucket == "" {
		return Location{}, fmt.Errorf("empty bucket in storage location %q", raw)
	}
	loc.Prefix = strings.Trim(loc.Prefix, "/")
	return loc, nil
}

// ObjectKey maps a blob key to its object name.
func (l Location) ObjectKey(key string) string {
	if l.Prefix == "" {
		return key + ".json"
	}
	return path.Join(l.Prefix, key) + ".json"
}

// BlobKey maps an object name back to its blob key. ok is false for objects
// outside the prefix or without the .json suffix.
func (l Location) BlobKey(object string) (string, bool) {
	rest := object
	if l.Prefix != "" {
		var found bool
		rest, found = strings.CutPrefix(object, l.Prefix+"/")
		if !found {
			return "", false
		}
	}
	return strings.CutSuffix(rest, ".json")
}

// ListPrefix is the object-name prefix matching blob keys starting with p.
func (l Location) ListPrefix(p string) string {
	if l.Prefix == "" {
		return p
	}
	return l.Prefix + "/" + p
}

func (l Location) String() string {
	if l.Prefix == "" {
		return fmt.Sprintf("%s://%s", l.Scheme, l.Bucket)
	}
	return fmt.Sprintf("%s://%s/%s", l.Scheme, l.Bucket, l.Prefix)
}

func unquoteETag(s string) string {
	return strings.Trim(s, `"`)
}

func quoteETag(s string) string {
	return `"` + unquoteETag(s) + `"`
}
