package metadata

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true, "not": true,
	"you": true, "all": true, "can": true, "had": true, "her": true, "was": true,
	"one": true, "our": true, "out": true, "day": true, "get": true, "has": true,
	"him": true, "his": true, "how": true, "its": true, "new": true, "now": true,
	"old": true, "see": true, "two": true, "way": true, "who": true, "boy": true,
	"did": true, "man": true, "may": true, "she": true, "use": true, "your": true,
	"been": true, "from": true, "have": true, "they": true, "know": true, "want": true,
	"were": true, "what": true, "when": true, "with": true, "would": true, "make": true,
	"time": true, "very": true, "will": true, "into": true, "said": true, "each": true,
	"which": true, "their": true, "called": true, "other": true, "many": true, "after": true,
	"first": true, "well": true, "water": true,
}

// IsStopWord reports whether word (lower-case) is excluded from keywords.
func IsStopWord(word string) bool {
	return stopWords[word]
}
