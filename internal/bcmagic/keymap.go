package bcmagic

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"text/template"
)

// templateFuncs are available to URL templates. pathescape makes a group safe as one path segment.
var templateFuncs = template.FuncMap{
	"pathescape": url.PathEscape,
}

// KeywordMap maps scans of the form keyword|arg1|...|argN to URLs.
// Regex runs against everything after the keyword; its named groups feed URLTemplate.
type KeywordMap struct {
	Keyword     string `json:"keyword"`
	Regex       string `json:"regex"`
	URLTemplate string `json:"url_template"`
}

// Validate checks that the regex compiles and the template parses
func (k *KeywordMap) Validate() error {
	if strings.TrimSpace(k.Keyword) == "" {
		return fmt.Errorf("keyword is required")
	}
	if strings.Contains(k.Keyword, "|") {
		return fmt.Errorf("keyword must not contain '|'")
	}
	if _, err := regexp.Compile(k.Regex); err != nil {
		return fmt.Errorf("compiling regex: %w", err)
	}
	if _, err := template.New(k.Keyword).Funcs(templateFuncs).Option("missingkey=zero").Parse(k.URLTemplate); err != nil {
		return fmt.Errorf("parsing url template: %w", err)
	}
	return nil
}

// patternCache keeps compiled keyword map regexes and templates
type patternCache struct {
	mu        sync.Mutex
	regexes   map[string]*regexp.Regexp
	templates map[string]*template.Template
}

func newPatternCache() *patternCache {
	return &patternCache{
		regexes:   make(map[string]*regexp.Regexp),
		templates: make(map[string]*template.Template),
	}
}

func (c *patternCache) regex(expr string) (*regexp.Regexp, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if re, ok := c.regexes[expr]; ok {
		return re, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	c.regexes[expr] = re
	return re, nil
}

func (c *patternCache) template(text string) (*template.Template, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.templates[text]; ok {
		return t, nil
	}
	t, err := template.New("url").Funcs(templateFuncs).Option("missingkey=zero").Parse(text)
	if err != nil {
		return nil, err
	}
	c.templates[text] = t
	return t, nil
}

// resolve matches content against the map and renders the URL
func (c *patternCache) resolve(k *KeywordMap, content string) (string, bool, error) {
	re, err := c.regex(k.Regex)
	if err != nil {
		return "", false, fmt.Errorf("compiling regex: %w", err)
	}

	match := re.FindStringSubmatch(content)
	if match == nil {
		return "", false, nil
	}

	groups := make(map[string]string)
	for i, name := range re.SubexpNames() {
		if name != "" {
			groups[name] = match[i]
		}
	}

	t, err := c.template(k.URLTemplate)
	if err != nil {
		return "", false, fmt.Errorf("parsing url template: %w", err)
	}

	var sb strings.Builder
	if err := t.Execute(&sb, groups); err != nil {
		return "", false, fmt.Errorf("rendering url template: %w", err)
	}
	return sb.String(), true, nil
}
