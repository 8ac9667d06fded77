package version

import "regexp"

// Extract returns every match of pattern in text, in order of occurrence.
// Duplicates are kept. When the pattern has capture groups the first group of
// each match is returned instead of the whole match.
func Extract(text string, pattern *regexp.Regexp) []string {
	if pattern == nil || text == "" {
		return nil
	}
	matches := pattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if len(m) > 1 {
			out = append(out, m[1])
			continue
		}
		out = append(out, m[0])
	}
	return out
}
