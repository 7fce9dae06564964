package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed content/site.yaml
var defaultContent []byte

// Section is one block of a content page.
type Section struct {
	Heading string   `yaml:"heading"`
	Body    []string `yaml:"body"`
	Items   []string `yaml:"items"`
}

// Page is the copy of one public page.
type Page struct {
	Title    string    `yaml:"title"`
	Lead     string    `yaml:"lead"`
	Sections []Section `yaml:"sections"`
}

// Link is a navigation or footer entry.
type Link struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

// Site is the editable content of the public website.
type Site struct {
	Name    string          `yaml:"name"`
	Tagline string          `yaml:"tagline"`
	Email   string          `yaml:"email"`
	Phone   string          `yaml:"phone"`
	Address string          `yaml:"address"`
	Nav     []Link          `yaml:"nav"`
	Footer  []Link          `yaml:"footer"`
	Pages   map[string]Page `yaml:"pages"`
}

// PageOrEmpty returns the page named key, or a page titled after key when it is not defined.
func (s *Site) PageOrEmpty(key string) Page {
	if p, ok := s.Pages[key]; ok {
		return p
	}
	if key == "" {
		return Page{}
	}
	return Page{Title: strings.ToUpper(key[:1]) + key[1:]}
}

// LoadSite reads content from path, or the embedded default when path is empty.
func LoadSite(path string) (*Site, error) {
	raw := defaultContent
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read content %s: %w", path, err)
		}
		raw = b
	}
	var site Site
	if err := yaml.Unmarshal(raw, &site); err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}
	if site.Name == "" {
		return nil, fmt.Errorf("parse content: site name is required")
	}
	return &site, nil
}

// Templates parses every embedded page template.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
}

var funcs = template.FuncMap{
	"formatTime": func(t time.Time, loc *time.Location) string {
		if loc == nil {
			loc = time.UTC
		}
		return t.In(loc).Format("1/2/2006, 3:04:05 PM")
	},
	"yesNo": func(b bool) string {
		if b {
			return "Yes"
		}
		return "No"
	},
	// query builds "?k=v&..." from alternating keys and values, skipping empty values.
	"query": func(kv ...string) template.URL {
		vals := url.Values{}
		for i := 0; i+1 < len(kv); i += 2 {
			if kv[i+1] != "" {
				vals.Set(kv[i], kv[i+1])
			}
		}
		if len(vals) == 0 {
			return ""
		}
		return template.URL("?" + vals.Encode())
	},
}
