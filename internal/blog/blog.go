// Package blog serves the articles shown on the blog pages. Posts are
// Markdown files with a YAML front matter block, compiled into the binary.
package blog

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/gnmweb/internal/common"
)

//go:embed posts/*.md
var embedded embed.FS

type Post struct {
	Slug     string    `yaml:"-"`
	Title    string    `yaml:"title"`
	Excerpt  string    `yaml:"excerpt"`
	Author   string    `yaml:"author"`
	Date     time.Time `yaml:"date"`
	ReadTime string    `yaml:"readTime"`
	Category string    `yaml:"category"`
	Featured bool      `yaml:"featured"`

	HTML template.HTML `yaml:"-"`
}

type Category struct {
	Name  string
	Count int
}

// Store holds parsed posts, newest first.
type Store struct {
	posts  []Post
	bySlug map[string]int
}

// Load parses the posts compiled into the binary.
func Load() (*Store, error) {
	sub, err := fs.Sub(embedded, "posts")
	if err != nil {
		return nil, err
	}
	return LoadFS(sub)
}

// LoadFS parses every *.md file at the root of fsys. The file name without
// extension becomes the slug.
func LoadFS(fsys fs.FS) (*Store, error) {
	names, err := fs.Glob(fsys, "*.md")
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM, extension.Typographer))

	s := &Store{bySlug: make(map[string]int, len(names))}
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		p, err := parse(md, raw)
		if err != nil {
			return nil, fmt.Errorf("post %s: %w", name, err)
		}
		p.Slug = strings.TrimSuffix(path.Base(name), ".md")
		s.posts = append(s.posts, p)
	}

	sort.SliceStable(s.posts, func(i, j int) bool {
		return s.posts[i].Date.After(s.posts[j].Date)
	})
	for i, p := range s.posts {
		s.bySlug[p.Slug] = i
	}
	return s, nil
}

var errNoFrontMatter = errors.New("missing front matter")

func parse(md goldmark.Markdown, raw []byte) (Post, error) {
	raw = bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
	rest, ok := bytes.CutPrefix(raw, []byte("---\n"))
	if !ok {
		return Post{}, errNoFrontMatter
	}
	head, body, ok := bytes.Cut(rest, []byte("\n---\n"))
	if !ok {
		return Post{}, errNoFrontMatter
	}

	var p Post
	if err := yaml.Unmarshal(head, &p); err != nil {
		return Post{}, fmt.Errorf("front matter: %w", err)
	}
	if p.Title == "" {
		return Post{}, errors.New("title is required")
	}

	var buf bytes.Buffer
	if err := md.Convert(body, &buf); err != nil {
		return Post{}, fmt.Errorf("render: %w", err)
	}
	p.HTML = template.HTML(buf.String())
	return p, nil
}

// List returns posts of category, or all posts when category is empty.
func (s *Store) List(category string) []Post {
	out := make([]Post, 0, len(s.posts))
	for _, p := range s.posts {
		if category == "" || strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}

// Featured returns the post marked featured, falling back to the newest.
func (s *Store) Featured() (Post, bool) {
	for _, p := range s.posts {
		if p.Featured {
			return p, true
		}
	}
	if len(s.posts) == 0 {
		return Post{}, false
	}
	return s.posts[0], true
}

func (s *Store) Find(slug string) (Post, error) {
	i, ok := s.bySlug[slug]
	if !ok {
		return Post{}, common.ErrNotFound
	}
	return s.posts[i], nil
}

// Categories lists categories in order of first appearance with post counts.
func (s *Store) Categories() []Category {
	var out []Category
	idx := map[string]int{}
	for _, p := range s.posts {
		if i, ok := idx[p.Category]; ok {
			out[i].Count++
			continue
		}
		idx[p.Category] = len(out)
		out = append(out, Category{Name: p.Category, Count: 1})
	}
	return out
}
