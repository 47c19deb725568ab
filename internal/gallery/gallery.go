// Package gallery lists portfolio pictures for the gallery page.
//
// Pictures live in an S3-compatible bucket as <prefix>/<category>/<file>.
// The object listing is cached in Redis; presigned URLs are not, since they
// expire.
package gallery

import (
	"context"
	"path"
	"strings"
	"unicode"
)

// Categories in display order. The bucket folder is the lower-cased name.
var Categories = []string{"Weddings", "Corporate", "Birthdays", "Concerts", "Other"}

type Item struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	URL         string `json:"-"`
}

// Source is what the gallery page reads from.
type Source interface {
	List(ctx context.Context, category string) ([]Item, error)
}

// CategoryFor maps a folder or filter value to its display name. Unknown
// values map to "".
func CategoryFor(s string) string {
	for _, c := range Categories {
		if strings.EqualFold(c, strings.TrimSpace(s)) {
			return c
		}
	}
	return ""
}

// TitleFromKey turns "weddings/elegant-garden_wedding.jpg" into
// "Elegant Garden Wedding".
func TitleFromKey(key string) string {
	name := path.Base(key)
	name = strings.TrimSuffix(name, path.Ext(name))
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || unicode.IsSpace(r)
	})
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

func isImage(key string) bool {
	return imageExts[strings.ToLower(path.Ext(key))]
}

// filter keeps items of category; "" and "all" keep everything.
func filter(items []Item, category string) []Item {
	if category == "" || strings.EqualFold(category, "all") {
		return items
	}
	want := CategoryFor(category)
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Category == want {
			out = append(out, it)
		}
	}
	return out
}
