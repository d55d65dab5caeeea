package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/andybalholm/cascadia"
	"github.com/antchfx/xpath"
	"gopkg.in/yaml.v3"
)

// Selection methods and match rules form closed enums. Unknown variants are
// rejected when the site configuration is loaded, not at evaluation time.
const (
	SelectXPath = "xpath"
	SelectCSS   = "css"

	MatchSingle = "single"
	MatchFirst  = "first"
	MatchAll    = "all"
)

// FieldSpec declares how to pull one field out of a document.
//
// The YAML key names follow the site-configuration wire format:
//
//	title:
//	  select-method: xpath
//	  select-expression: //h1[@class="headline"]/text()
//	  match-rule: first
type FieldSpec struct {
	SelectMethod     string `yaml:"select-method" json:"select-method"`
	SelectExpression string `yaml:"select-expression" json:"select-expression"`
	MatchRule        string `yaml:"match-rule" json:"match-rule,omitempty"`
}

// validate checks the spec against the closed enums and compiles the
// expression to surface syntax errors eagerly. path names the config
// location for error messages. A missing match rule defaults to "single".
func (f *FieldSpec) validate(path string) error {
	if f.SelectMethod == "" {
		return fmt.Errorf("%s: select-method is required", path)
	}
	if f.SelectExpression == "" {
		return fmt.Errorf("%s: select-expression is required", path)
	}
	switch f.SelectMethod {
	case SelectXPath:
		if _, err := xpath.Compile(f.SelectExpression); err != nil {
			return fmt.Errorf("%s: invalid xpath expression %q: %w", path, f.SelectExpression, err)
		}
	case SelectCSS:
		if _, err := cascadia.Parse(f.SelectExpression); err != nil {
			return fmt.Errorf("%s: invalid css selector %q: %w", path, f.SelectExpression, err)
		}
	default:
		return fmt.Errorf("%s: %q is not a valid select-method", path, f.SelectMethod)
	}
	switch f.MatchRule {
	case "":
		f.MatchRule = MatchSingle
	case MatchSingle, MatchFirst, MatchAll:
	default:
		return fmt.Errorf("%s: %q is not a valid match-rule", path, f.MatchRule)
	}
	return nil
}

// StringList accepts either a YAML scalar or a sequence, so site configs can
// write `start_url: https://example.com` and grow it into a list later.
type StringList []string

func (s *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var single string
		if err := value.Decode(&single); err != nil {
			return err
		}
		*s = StringList{single}
		return nil
	case yaml.SequenceNode:
		var many []string
		if err := value.Decode(&many); err != nil {
			return err
		}
		*s = StringList(many)
		return nil
	default:
		return fmt.Errorf("expected string or list of strings, got yaml kind %d", value.Kind)
	}
}

// ArticleConfig holds the dedicated extraction rules for a site's articles.
type ArticleConfig struct {
	// URL gate: a page only counts as an article when its resolved URL
	// matches URLMustContain (if set) and does not match URLMustNotContain.
	URLMustContain    string `yaml:"url_must_contain"`
	URLMustNotContain string `yaml:"url_must_not_contain"`

	Title               *FieldSpec `yaml:"title"`
	Byline              *FieldSpec `yaml:"byline"`
	Content             *FieldSpec `yaml:"content"`
	PublicationDatetime *FieldSpec `yaml:"publication_datetime"`

	// DatetimeFormat is the expected publication-date format
	// (YYYY-style tokens, or "unix"/"unix_milliseconds" for epoch values).
	DatetimeFormat string `yaml:"datetime-format"`

	// SimplifiedDatetimeFormats strips separator characters from date
	// strings before parsing, for sites with wildly inconsistent formats.
	SimplifiedDatetimeFormats bool `yaml:"simplified-datetime-formats"`
}

// CrawlStrategy carries the crawl-side parameters. The crawl engine is an
// external collaborator; these are loaded and validated here so one file
// configures both halves of the pipeline.
type CrawlStrategy struct {
	Method            string `yaml:"method"` // index_page, scattergun, sitemap
	StripQueryStrings bool   `yaml:"strip_query_strings"`
}

// SiteConfig is the per-site declarative configuration. Immutable once
// loaded; owned by the process for the duration of a run.
type SiteConfig struct {
	SiteName          string                `yaml:"-"`
	StartURL          StringList            `yaml:"start_url"`
	AdditionalDomains StringList            `yaml:"additional_domains"`
	ObeyRobotsTxt     *bool                 `yaml:"obey_robots_txt"`
	CrawlStrategy     *CrawlStrategy        `yaml:"crawl_strategy"`
	Article           ArticleConfig         `yaml:"article"`
	Metadata          map[string]*FieldSpec `yaml:"metadata"`

	// ExcludeTags lists CSS selectors removed from the document before the
	// readability pass (ads, related-article rails, comment blocks).
	ExcludeTags []string `yaml:"exclude_tags"`

	// ContentDigests adds per-paragraph SHA-256 digests to the article
	// metadata for downstream duplicate analysis.
	ContentDigests bool `yaml:"content_digests"`

	requireRe *regexp.Regexp
	rejectRe  *regexp.Regexp
}

// RequireRegexp returns the compiled url_must_contain pattern, or nil.
func (s *SiteConfig) RequireRegexp() *regexp.Regexp { return s.requireRe }

// RejectRegexp returns the compiled url_must_not_contain pattern, or nil.
func (s *SiteConfig) RejectRegexp() *regexp.Regexp { return s.rejectRe }

// validate compiles regexes, validates every field spec against the closed
// enums, and rejects the configuration eagerly on the first problem.
func (s *SiteConfig) validate() error {
	var err error
	if s.Article.URLMustContain != "" {
		if s.requireRe, err = regexp.Compile(s.Article.URLMustContain); err != nil {
			return fmt.Errorf("%s: invalid url_must_contain: %w", s.SiteName, err)
		}
	}
	if s.Article.URLMustNotContain != "" {
		if s.rejectRe, err = regexp.Compile(s.Article.URLMustNotContain); err != nil {
			return fmt.Errorf("%s: invalid url_must_not_contain: %w", s.SiteName, err)
		}
	}

	specs := map[string]*FieldSpec{
		"article.title":                s.Article.Title,
		"article.byline":               s.Article.Byline,
		"article.content":              s.Article.Content,
		"article.publication_datetime": s.Article.PublicationDatetime,
	}
	for name, spec := range s.Metadata {
		specs["metadata."+name] = spec
	}
	for path, spec := range specs {
		if spec == nil {
			continue
		}
		if err := spec.validate(s.SiteName + ": " + path); err != nil {
			return err
		}
	}
	return nil
}

// LoadSites reads the YAML site-configuration file: a mapping keyed by site
// name. All configurations are validated before any is returned, so a broken
// spec fails the process at startup rather than mid-run.
func LoadSites(path string) (map[string]*SiteConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read site configs: %w", err)
	}
	return ParseSites(raw)
}

// ParseSites parses and validates site configurations from YAML bytes.
func ParseSites(raw []byte) (map[string]*SiteConfig, error) {
	sites := make(map[string]*SiteConfig)
	if err := yaml.Unmarshal(raw, &sites); err != nil {
		return nil, fmt.Errorf("parse site configs: %w", err)
	}
	for name, site := range sites {
		if site == nil {
			return nil, fmt.Errorf("%s: empty site configuration", name)
		}
		site.SiteName = name
		if err := site.validate(); err != nil {
			return nil, err
		}
	}
	return sites, nil
}
