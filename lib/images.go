package lib

import "strings"

// ResolveImageURL turns a backend-relative image path into an absolute URL.
// Absolute URLs and empty paths are returned unchanged.
func ResolveImageURL(baseURL, path string) string {
	if path == "" || strings.HasPrefix(path, "http") {
		return path
	}
	base := strings.TrimSuffix(baseURL, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}
