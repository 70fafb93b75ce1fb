// Package format renders target file names for episodes from a template.
//
// Templates reference variables in braces:
//
//	{show}       series name as returned by the catalog
//	{show_dot}   series name title-cased, words joined with dots
//	{season}     season number, two digits
//	{episode}    episode number, two digits
//	{ecode}      S{season}E{episode}
//	{title}      episode title
//	{title_dot}  episode title title-cased, words joined with dots
package format

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Digital-Shane/scrappy/internal/provider"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultTemplate yields names like Show.Name.S01E01.Pilot.
const DefaultTemplate = "{show_dot}.{ecode}.{title_dot}"

var (
	variablePattern = regexp.MustCompile(`\{([^}]+)\}`)
	repeatedDots    = regexp.MustCompile(`\.{2,}`)
	repeatedSpaces  = regexp.MustCompile(`\s{2,}`)
	emptyBrackets   = regexp.MustCompile(`\s*[\(\[\{<]\s*[\)\]\}>]`)
)

// Formatter turns an episode into a file name without extension.
type Formatter interface {
	Format(ep provider.Episode) string
}

// Template is a Formatter backed by a template string.
type Template struct {
	pattern string
	title   cases.Caser
}

// Variables lists the names a template may reference.
var Variables = []string{"show", "show_dot", "season", "episode", "ecode", "title", "title_dot"}

// New parses pattern. An empty pattern means DefaultTemplate.
func New(pattern string) (*Template, error) {
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultTemplate
	}
	if err := Validate(pattern); err != nil {
		return nil, err
	}
	return &Template{pattern: pattern, title: cases.Title(language.Und)}, nil
}

// Default returns the default formatter.
func Default() *Template {
	t, _ := New(DefaultTemplate)
	return t
}

// Validate rejects templates that reference unknown variables or name no
// per-episode value, since those would give every file the same name.
func Validate(pattern string) error {
	perEpisode := false
	for _, match := range variablePattern.FindAllStringSubmatch(pattern, -1) {
		name := match[1]
		known := false
		for _, v := range Variables {
			if v == name {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("unknown variable: {%s}", name)
		}
		switch name {
		case "episode", "ecode", "title", "title_dot":
			perEpisode = true
		}
	}
	if !perEpisode {
		return fmt.Errorf("template %q must reference {ecode}, {episode} or {title}", pattern)
	}
	return nil
}

// Pattern returns the template string.
func (t *Template) Pattern() string {
	return t.pattern
}

// Format renders the template for ep.
func (t *Template) Format(ep provider.Episode) string {
	result := variablePattern.ReplaceAllStringFunc(t.pattern, func(placeholder string) string {
		return t.resolve(placeholder[1:len(placeholder)-1], ep)
	})
	return cleanup(result)
}

func (t *Template) resolve(name string, ep provider.Episode) string {
	switch name {
	case "show":
		return ep.Show
	case "show_dot":
		return t.dotted(ep.Show)
	case "season":
		return fmt.Sprintf("%02d", ep.Season)
	case "episode":
		return fmt.Sprintf("%02d", ep.Number)
	case "ecode":
		return fmt.Sprintf("S%02dE%02d", ep.Season, ep.Number)
	case "title":
		return ep.Title
	case "title_dot":
		return t.dotted(ep.Title)
	}
	return ""
}

// dotted title-cases s and joins its words with dots.
func (t *Template) dotted(s string) string {
	return strings.Join(strings.Fields(t.title.String(s)), ".")
}

func cleanup(s string) string {
	s = emptyBrackets.ReplaceAllString(s, "")
	s = repeatedDots.ReplaceAllString(s, ".")
	s = repeatedSpaces.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return strings.Trim(s, ".-_ ")
}
