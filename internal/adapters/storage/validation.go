package storage

import (
	"fmt"
	"path"
	"strings"
)

// AllowedContentTypes defines the MIME types the application stores.
var AllowedContentTypes = map[string]bool{
	"text/html; charset=utf-8": true,
	"text/html":                true,
	"application/json":         true,
}

// ValidateKey rejects empty, absolute or traversing object keys.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("object key is required")
	}
	if strings.HasPrefix(key, "/") {
		return fmt.Errorf("object key %q must be relative", key)
	}
	if path.Clean(key) != key || strings.Contains(key, "..") {
		return fmt.Errorf("object key %q is not canonical", key)
	}
	return nil
}

// ValidateContentType checks if the content type is allowed.
func ValidateContentType(contentType string) error {
	normalized := strings.ToLower(strings.TrimSpace(contentType))
	if !AllowedContentTypes[normalized] {
		return fmt.Errorf("content type %q is not allowed", contentType)
	}
	return nil
}

// ValidateObject applies every upload check.
func ValidateObject(key, contentType string, size int64) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := ValidateContentType(contentType); err != nil {
		return err
	}
	if size <= 0 {
		return fmt.Errorf("object is empty")
	}
	if size > MaxObjectSize {
		return fmt.Errorf("object size %d exceeds maximum of %d bytes", size, MaxObjectSize)
	}
	return nil
}
