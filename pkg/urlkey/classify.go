// Package urlkey derives deterministic sort keys from tab addresses.
//
// Every address is classified into a bucket (a cleaned hostname, an
// extension-id tag, or one of the internal/invalid sentinels) plus the path,
// query and fragment components used for ordering within the bucket.
package urlkey

import (
	"net/url"
	"strings"
)

const (
	// BucketInternal collects browser-native pages (chrome://, about:, ...).
	BucketInternal = "internal"
	// BucketInvalid collects addresses that fail URL parsing entirely.
	BucketInvalid = "invalid"
)

// extensionSchemes are the extension-page schemes; the URL host holds the
// extension identifier.
var extensionSchemes = map[string]bool{
	"chrome-extension":     true,
	"moz-extension":        true,
	"extension":            true,
	"safari-web-extension": true,
}

// internalSchemes identify browser-native pages across vendors.
var internalSchemes = map[string]bool{
	"chrome":           true,
	"chrome-untrusted": true,
	"chrome-search":    true,
	"about":            true,
	"edge":             true,
	"brave":            true,
	"opera":            true,
	"vivaldi":          true,
	"devtools":         true,
}

// Classified is the ephemeral result of classifying one address.
type Classified struct {
	Bucket   string
	Path     string
	Query    string // includes leading "?" when present
	Fragment string // includes leading "#" when present
}

// Classify maps an address to a bucket and comparable URL components.
// Callers sort tabs by their effective address (see browser.Tab.Address).
//
// Non-http(s) schemes outside the internal list bucket by their literal host
// (see DESIGN.md for the variant choice).
func Classify(addr string) Classified {
	u, err := url.Parse(addr)
	if err != nil || u.Scheme == "" {
		return placeholder(BucketInvalid, addr)
	}

	scheme := strings.ToLower(u.Scheme)
	switch {
	case extensionSchemes[scheme]:
		return classified("ext:"+strings.ToLower(u.Hostname()), u)
	case internalSchemes[scheme]:
		return placeholder(BucketInternal, addr)
	case scheme == "http" || scheme == "https":
		host := strings.ToLower(u.Hostname())
		if strings.HasPrefix(host, "www.") {
			host = host[len("www."):]
		}
		return classified(host, u)
	default:
		return classified(strings.ToLower(u.Hostname()), u)
	}
}

// placeholder encodes the whole raw address as a path under a pseudo-host so
// that unclassifiable addresses still sort deterministically.
func placeholder(bucket, addr string) Classified {
	return Classified{Bucket: bucket, Path: "/" + url.PathEscape(addr)}
}

func classified(bucket string, u *url.URL) Classified {
	c := Classified{Bucket: bucket, Path: u.EscapedPath()}
	if c.Path == "" && u.Opaque != "" {
		c.Path = "/" + url.PathEscape(u.Opaque)
	}
	if u.RawQuery != "" {
		c.Query = "?" + u.RawQuery
	}
	if u.Fragment != "" {
		c.Fragment = "#" + u.EscapedFragment()
	}
	return c
}

// SortKey builds the within-bucket ordering key: bucket, path, query and
// fragment concatenated in that order.
func SortKey(c Classified) string {
	return c.Bucket + c.Path + c.Query + c.Fragment
}
