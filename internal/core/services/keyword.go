package services

import "strings"

// Words stripped out when falling back to keyword search.
var stopwords = map[string]struct{}{
	"play": {}, "some": {}, "me": {}, "i": {}, "want": {}, "can": {}, "you": {},
	"please": {}, "listen": {}, "to": {}, "for": {}, "a": {}, "put": {}, "on": {}, "the": {},
}

// keywordFallback strips filler words and returns a basic search query.
// Used when every AI tier is unavailable.
// Example: "play some high energy dnb" -> "high energy dnb".
func keywordFallback(request string) string {
	var kept []string
	for _, w := range strings.Fields(strings.ToLower(request)) {
		if _, stop := stopwords[w]; !stop {
			kept = append(kept, w)
		}
	}
	cleaned := strings.Join(kept, " ")
	if cleaned == "" {
		return request
	}
	return cleaned
}
