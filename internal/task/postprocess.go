package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformedExtraction is returned when the glossary extraction call
// answers with something that cannot be parsed into term candidates.
var ErrMalformedExtraction = errors.New("malformed glossary extraction payload")

// chapterTitleLineRe matches a chapter heading line such as
// "الفصل 12: البداية" or "Chapter 12: The Beginning". The text after the
// first colon is the title.
var chapterTitleLineRe = regexp.MustCompile(`^(?:الفصل|Chapter)[^:：]*[:：]\s*(.+)$`)

// titlePrefixRe strips a redundant "الفصل <N>:" prefix the model tends to
// repeat in title-generation output.
var titlePrefixRe = regexp.MustCompile(`^الفصل\s*\d+\s*[:：\-–]?\s*`)

// FallbackChapterTitle is the title used when none can be derived from
// model output.
func FallbackChapterTitle(chapter int) string {
	return "الفصل " + strconv.Itoa(chapter)
}

// DeriveChapterTitle extracts a chapter title from translated text: if the
// first non-empty line is a chapter heading, the text after its first colon
// is the title; otherwise the fallback form is used.
func DeriveChapterTitle(translated string, chapter int) string {
	for _, line := range strings.Split(translated, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := chapterTitleLineRe.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1])
		}
		// only the first non-empty line is considered
		break
	}
	return FallbackChapterTitle(chapter)
}

// CleanGeneratedTitle normalizes raw title-generation output: first line
// only, surrounding quotes stripped, leading "الفصل <N>:" prefix removed.
// Empty results fall back to the default title form.
func CleanGeneratedTitle(raw string, chapter int) string {
	title := strings.TrimSpace(raw)
	if nl := strings.IndexByte(title, '\n'); nl >= 0 {
		title = strings.TrimSpace(title[:nl])
	}
	title = strings.Trim(title, "\"'`“”«»")
	title = titlePrefixRe.ReplaceAllString(title, "")
	title = strings.TrimSpace(title)
	if title == "" {
		return FallbackChapterTitle(chapter)
	}
	return title
}

// StripCodeFence removes a surrounding Markdown code fence (``` or
// ```json) from model output. Text without a fence passes through
// unchanged.
func StripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// GlossaryCandidate is one term as emitted by the extraction call, before
// category normalization.
type GlossaryCandidate struct {
	Term        string `json:"term"`
	Translation string `json:"translation"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// ParseGlossaryPayload parses the extraction call's JSON into term
// candidates. The root may be an array of candidates or an object carrying
// them under "newTerms" or "terms"; a Markdown code fence around the JSON
// is tolerated. Anything else is ErrMalformedExtraction.
func ParseGlossaryPayload(raw string) ([]GlossaryCandidate, error) {
	s := StripCodeFence(raw)
	if s == "" {
		return nil, ErrMalformedExtraction
	}

	var list []GlossaryCandidate
	if err := json.Unmarshal([]byte(s), &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		NewTerms []GlossaryCandidate `json:"newTerms"`
		Terms    []GlossaryCandidate `json:"terms"`
	}
	if err := json.Unmarshal([]byte(s), &wrapped); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedExtraction, err)
	}
	if wrapped.NewTerms != nil {
		return wrapped.NewTerms, nil
	}
	if wrapped.Terms != nil {
		return wrapped.Terms, nil
	}
	return nil, ErrMalformedExtraction
}

// renderPrompt substitutes the placeholders a stored prompt template may
// carry.
func renderPrompt(template, novelTitle string, chapter int, glossary string) string {
	return strings.NewReplacer(
		"{{novel}}", novelTitle,
		"{{chapter}}", strconv.Itoa(chapter),
		"{{glossary}}", glossary,
	).Replace(template)
}

// excerpt truncates s to at most maxRunes runes.
func excerpt(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}
