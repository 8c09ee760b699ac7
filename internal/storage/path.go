package storage

import (
	"fmt"
	"net/url"
	"strings"
)

// Scheme names an object storage backend.
type Scheme string

// Supported storage schemes.
const (
	SchemeS3    Scheme = "s3"
	SchemeGCS   Scheme = "gs"
	SchemeAzure Scheme = "az"
)

// ParseURI splits an object URI into its backend scheme, bucket and key.
//
// Supported formats:
//
//	s3://bucket/path/to/file
//	gs://bucket/path/to/file
//	az://container/path/to/file
//	abfss://container@account.dfs.core.windows.net/path/to/file
//	https://account.blob.core.windows.net/container/path/to/file
func ParseURI(uri string) (scheme Scheme, bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", "", fmt.Errorf("parse storage URI %q: %w", uri, err)
	}
	switch u.Scheme {
	case "s3":
		bucket, key, err = ParseS3Path(uri)
		return SchemeS3, bucket, key, err
	case "gs":
		bucket, key, err = parseGCSPath(uri)
		return SchemeGCS, bucket, key, err
	case "az", "abfss", "https":
		bucket, key, err = parseAzurePath(uri)
		return SchemeAzure, bucket, key, err
	default:
		return "", "", "", fmt.Errorf("unsupported storage URI scheme %q in %q", u.Scheme, uri)
	}
}

// ParseS3Path extracts bucket and key from an "s3://bucket/path/to/file" URI.
func ParseS3Path(s3Path string) (bucket, key string, err error) {
	u, err := url.Parse(s3Path)
	if err != nil {
		return "", "", fmt.Errorf("parse S3 path %q: %w", s3Path, err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("expected s3:// scheme, got %q in %q", u.Scheme, s3Path)
	}
	bucket = u.Host
	if bucket == "" {
		return "", "", fmt.Errorf("empty bucket in S3 path %q", s3Path)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("empty key in S3 path %q", s3Path)
	}
	return bucket, key, nil
}

func parseGCSPath(path string) (bucket, key string, err error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", "", fmt.Errorf("parse GCS path %q: %w", path, err)
	}
	if u.Scheme != "gs" {
		return "", "", fmt.Errorf("expected gs:// scheme, got %q in %q", u.Scheme, path)
	}
	bucket = u.Host
	if bucket == "" {
		return "", "", fmt.Errorf("empty bucket in GCS path %q", path)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("empty key in GCS path %q", path)
	}
	return bucket, key, nil
}

func parseAzurePath(path string) (container, key string, err error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", "", fmt.Errorf("parse Azure path %q: %w", path, err)
	}

	switch u.Scheme {
	case "abfss":
		// url.Parse puts the container in userinfo and the account in host.
		if u.User == nil {
			return "", "", fmt.Errorf("abfss path %q missing container@account component", path)
		}
		container = u.User.Username()
		key = strings.TrimPrefix(u.Path, "/")
	case "az":
		container = u.Host
		key = strings.TrimPrefix(u.Path, "/")
	case "https":
		if !strings.Contains(u.Host, ".blob.core.windows.net") {
			return "", "", fmt.Errorf("unrecognized Azure HTTPS host %q in path %q", u.Host, path)
		}
		container, key, _ = strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	default:
		return "", "", fmt.Errorf("unrecognized Azure path scheme %q in %q", u.Scheme, path)
	}

	if container == "" {
		return "", "", fmt.Errorf("empty container in Azure path %q", path)
	}
	if key == "" {
		return "", "", fmt.Errorf("empty key in Azure path %q", path)
	}
	return container, key, nil
}
