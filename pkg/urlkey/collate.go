package urlkey

import (
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// A single shared collator gives natural alphabetic ordering (case and
// accents compare intuitively instead of by code point). Collators are not
// safe for concurrent use, hence the mutex.
var (
	collMu   sync.Mutex
	collator = collate.New(language.Und, collate.Loose)
)

// Compare collates a against b, returning -1, 0 or 1.
func Compare(a, b string) int {
	collMu.Lock()
	defer collMu.Unlock()
	return collator.CompareString(a, b)
}

// Less reports whether a collates before b.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}
