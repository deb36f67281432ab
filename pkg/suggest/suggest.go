// Package suggest proposes group titles for a window's ungrouped tabs.
//
// Tabs are clustered by bucket key; clusters of two or more get a heuristic
// title, which an optional LLM pass can replace with something friendlier.
// Suggestions are purely advisory and never mutate tabs.
package suggest

import (
	"sort"
	"strings"

	"github.com/b/tabsort/pkg/browser"
	"github.com/b/tabsort/pkg/urlkey"
)

// Suggestion names one cluster of related tabs.
type Suggestion struct {
	Bucket string `json:"bucket"`
	Title  string `json:"title"`
	TabIDs []int  `json:"tab_ids"`
}

// Clusters groups tabs by bucket key and titles each cluster heuristically.
// Singleton buckets are skipped; a one-tab group is noise.
func Clusters(tabs []browser.Tab) []Suggestion {
	byBucket := make(map[string][]int)
	for _, t := range tabs {
		c := urlkey.Classify(t.Address())
		byBucket[c.Bucket] = append(byBucket[c.Bucket], t.ID)
	}

	var out []Suggestion
	for bucket, ids := range byBucket {
		if len(ids) < 2 {
			continue
		}
		out = append(out, Suggestion{
			Bucket: bucket,
			Title:  heuristicTitle(bucket),
			TabIDs: ids,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return urlkey.Less(out[i].Bucket, out[j].Bucket)
	})
	return out
}

// heuristicTitle turns a bucket key into a readable default: the first
// hostname label, capitalized.
func heuristicTitle(bucket string) string {
	switch bucket {
	case urlkey.BucketInternal:
		return "Browser pages"
	case urlkey.BucketInvalid:
		return "Unsorted"
	}
	name := bucket
	if strings.HasPrefix(name, "ext:") {
		return "Extensions"
	}
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	if name == "" {
		return "Unsorted"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
