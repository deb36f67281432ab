package urlkey

import "testing"

func TestClassifyHTTP(t *testing.T) {
	tests := []struct {
		name    string
		address string
		bucket  string
		key     string
	}{
		{"plain https", "https://example.com/a", "example.com", "example.com/a"},
		{"www stripped", "https://www.example.com/a", "example.com", "example.com/a"},
		{"upper host", "https://WWW.Example.COM/a", "example.com", "example.com/a"},
		{"http scheme", "http://other.com/x", "other.com", "other.com/x"},
		{"port dropped", "https://example.com:8443/a", "example.com", "example.com/a"},
		{"query kept", "https://example.com/a?b=1", "example.com", "example.com/a?b=1"},
		{"fragment kept", "https://example.com/a#frag", "example.com", "example.com/a#frag"},
		{"query before fragment", "https://example.com/a?b=1#frag", "example.com", "example.com/a?b=1#frag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.address)
			if c.Bucket != tt.bucket {
				t.Errorf("bucket = %q, want %q", c.Bucket, tt.bucket)
			}
			if got := SortKey(c); got != tt.key {
				t.Errorf("sort key = %q, want %q", got, tt.key)
			}
		})
	}
}

func TestClassifyInternalPages(t *testing.T) {
	settings := Classify("chrome://settings")
	blank := Classify("about:blank")
	if settings.Bucket != BucketInternal {
		t.Errorf("chrome:// bucket = %q, want %q", settings.Bucket, BucketInternal)
	}
	if blank.Bucket != BucketInternal {
		t.Errorf("about: bucket = %q, want %q", blank.Bucket, BucketInternal)
	}
	// Different raw addresses must stay distinct within the bucket.
	if SortKey(settings) == SortKey(blank) {
		t.Errorf("internal pages collapsed to one key %q", SortKey(settings))
	}
}

func TestClassifyExtensionPage(t *testing.T) {
	c := Classify("chrome-extension://abcdefghijklmnop/options.html")
	if c.Bucket != "ext:abcdefghijklmnop" {
		t.Errorf("bucket = %q, want ext:abcdefghijklmnop", c.Bucket)
	}
	if c.Path != "/options.html" {
		t.Errorf("path = %q, want /options.html", c.Path)
	}
}

func TestClassifyOtherScheme(t *testing.T) {
	c := Classify("ftp://Files.Example.org/pub")
	if c.Bucket != "files.example.org" {
		t.Errorf("bucket = %q, want files.example.org", c.Bucket)
	}
}

func TestClassifyUnparseable(t *testing.T) {
	tests := []string{
		"not a url at all",
		"http://[::1",
		"",
	}
	for _, addr := range tests {
		c := Classify(addr)
		if c.Bucket != BucketInvalid {
			t.Errorf("Classify(%q) bucket = %q, want %q", addr, c.Bucket, BucketInvalid)
		}
	}
}

func TestCollatedOrdering(t *testing.T) {
	if !Less("apple.com", "Banana.com") {
		t.Error("expected apple.com to collate before Banana.com")
	}
	if !Less("café.fr", "cafz.fr") {
		t.Error("expected café.fr to collate before cafz.fr")
	}
	if Compare("same", "same") != 0 {
		t.Error("expected identical strings to compare equal")
	}
}
