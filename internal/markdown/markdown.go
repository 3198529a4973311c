// Package markdown derives save-dialog file names from Markdown content.
package markdown

import (
	"bytes"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultStem is used when the content carries no usable title.
const DefaultStem = "report"

// Extension is appended to suggested names that lack it.
const Extension = ".md"

const maxStemRunes = 80

var unsafeNameRe = regexp.MustCompile(`[\\/:*?"<>|\x00-\x1f]+`)

// Title returns the frontmatter "title" if present, otherwise the first H1
// heading, otherwise an empty string.
func Title(content []byte) string {
	fm, body := splitFrontmatter(content)
	if fm != nil {
		if s, ok := fm["title"].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// SuggestFileName returns filename when given, otherwise a name built from
// the content's title. Suggested names always end in ".md".
func SuggestFileName(filename string, content []byte) string {
	if strings.TrimSpace(filename) != "" {
		return filename
	}
	stem := sanitize(Title(content))
	if stem == "" {
		stem = DefaultStem
	}
	if strings.EqualFold(filepath.Ext(stem), Extension) {
		return stem
	}
	return stem + Extension
}

func sanitize(title string) string {
	s := unsafeNameRe.ReplaceAllString(title, "-")
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, " .-")
	if r := []rune(s); len(r) > maxStemRunes {
		s = strings.TrimRight(string(r[:maxStemRunes]), " .-")
	}
	return s
}

// splitFrontmatter separates YAML frontmatter (between leading --- lines)
// from the body. Invalid or unterminated frontmatter is treated as body.
func splitFrontmatter(data []byte) (map[string]any, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	var fm map[string]any
	if err := yaml.Unmarshal(rest[:idx], &fm); err != nil {
		return nil, string(data)
	}
	body := strings.TrimLeft(string(rest[idx+1+len(delim):]), "\n\r")
	return fm, body
}
