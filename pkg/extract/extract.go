// Package extract pulls contact emails and topic keywords out of free-form
// channel text.
package extract

import "regexp"

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	// Runs of Hangul or Latin letters, two characters or longer. Digits and
	// punctuation split tokens.
	keywordRe = regexp.MustCompile(`[가-힣a-zA-Z]{2,}`)
)

// Emails returns the distinct email addresses found in text, in first
// appearance order.
func Emails(text string) []string {
	return dedup(emailRe.FindAllString(text, -1), -1)
}

// Keywords tokenizes the given titles and returns up to limit distinct
// tokens in first appearance order. A limit below zero means no cap.
func Keywords(titles []string, limit int) []string {
	var tokens []string
	for _, title := range titles {
		tokens = append(tokens, keywordRe.FindAllString(title, -1)...)
	}
	return dedup(tokens, limit)
}

func dedup(in []string, limit int) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if limit >= 0 && len(out) == limit {
			break
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
