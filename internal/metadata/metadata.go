// Package metadata derives bibliographic fields from raw OCR text.
package metadata

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	DefaultTitle     = "Unknown Title"
	DefaultAuthor    = "Unknown Author"
	DefaultPublisher = "Unknown Publisher"

	// MaxKeywords caps the keyword list of a single record.
	MaxKeywords = 10
)

var (
	yearPattern    = regexp.MustCompile(`\b(19|20)\d\d\b`)
	isbnPattern    = regexp.MustCompile(`(?i)ISBN[\s:-]*(\d{1,5}[-\s]?\d{1,7}[-\s]?\d{1,7}[-\s]?[\dX])`)
	keywordPattern = regexp.MustCompile(`[a-z]{4,}`)
	isbnSeparators = strings.NewReplacer("-", "", " ", "")
)

var titleSkipPrefixes = []string{"by", "copyright", "isbn", "published"}

var publisherMarkers = []string{"publisher", "publishing", "press", "books"}

// Keywords keeps first-occurrence order.
type Keywords []string

// String joins the keywords the way they are stored in the catalog table.
func (k Keywords) String() string {
	return strings.Join(k, ", ")
}

// Record is the best-effort result of a single extraction.
// Year and ISBN are nil when the text carries no match.
type Record struct {
	Title     string   `json:"title"`
	Author    string   `json:"author"`
	Year      *int     `json:"year"`
	ISBN      *string  `json:"isbn"`
	Publisher string   `json:"publisher"`
	Keywords  Keywords `json:"keywords"`
}

// Empty returns the all-default record.
func Empty() Record {
	return Record{
		Title:     DefaultTitle,
		Author:    DefaultAuthor,
		Publisher: DefaultPublisher,
		Keywords:  Keywords{},
	}
}

// Extract parses text produced by OCR. It never fails: every heuristic that
// does not match leaves its field at the default. filename is accepted for
// callers that want to log it but does not influence the result.
func Extract(text, filename string) Record {
	rec := Empty()
	if text == "" {
		return rec
	}

	lines := candidateLines(text)

	if title, ok := findTitle(lines); ok {
		rec.Title = title
	}
	if author, ok := findAuthor(lines); ok {
		rec.Author = author
	}
	rec.Year = findYear(text)
	rec.ISBN = findISBN(text)
	if publisher, ok := findPublisher(lines); ok {
		rec.Publisher = publisher
	}
	rec.Keywords = extractKeywords(text)

	return rec
}

func candidateLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func findTitle(lines []string) (string, bool) {
	for _, line := range lines {
		if utf8.RuneCountInString(line) <= 3 {
			continue
		}
		if hasAnyPrefix(strings.ToLower(line), titleSkipPrefixes) {
			continue
		}
		return line, true
	}
	return "", false
}

// findAuthor accepts a bare "By" line too: lines arrive trimmed, so "By " with
// nothing after it reaches us as "By" and yields an empty author.
func findAuthor(lines []string) (string, bool) {
	for _, line := range lines {
		lower := strings.ToLower(line)
		if lower == "by" {
			return "", true
		}
		if strings.HasPrefix(lower, "by ") {
			return strings.TrimSpace(line[len("by "):]), true
		}
	}
	return "", false
}

func findYear(text string) *int {
	for _, loc := range yearPattern.FindAllStringIndex(text, -1) {
		if !standalone(text, loc[0], loc[1]) {
			continue
		}
		year, err := strconv.Atoi(text[loc[0]:loc[1]])
		if err != nil {
			return nil
		}
		return &year
	}
	return nil
}

func findISBN(text string) *string {
	m := isbnPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	isbn := isbnSeparators.Replace(m[1])
	return &isbn
}

func findPublisher(lines []string) (string, bool) {
	for _, line := range lines {
		lower := strings.ToLower(line)
		for _, marker := range publisherMarkers {
			if strings.Contains(lower, marker) {
				return line, true
			}
		}
	}
	return "", false
}

func extractKeywords(text string) Keywords {
	keywords := Keywords{}
	seen := make(map[string]bool)
	lower := strings.ToLower(text)
	for _, loc := range keywordPattern.FindAllStringIndex(lower, -1) {
		if !standalone(lower, loc[0], loc[1]) {
			continue
		}
		word := lower[loc[0]:loc[1]]
		if seen[word] {
			continue
		}
		seen[word] = true
		if IsStopWord(word) {
			continue
		}
		keywords = append(keywords, word)
		if len(keywords) == MaxKeywords {
			break
		}
	}
	return keywords
}

// standalone reports whether text[start:end] is a whole word: no letter,
// number or underscore touches it on either side. regexp's \b only knows
// ASCII, so "Zürich" would otherwise yield "rich".
func standalone(text string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(text[:start]); isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		if r, _ := utf8.DecodeRuneInString(text[end:]); isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
