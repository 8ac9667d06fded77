package version

import "regexp"

// Delimiters is the character class separating version columns.
const Delimiters = `[._-]`

var delimiterRegex = regexp.MustCompile(Delimiters)

// Split breaks a raw version into its columns. Empty columns are kept, so
// "1..2" has three columns.
func Split(raw string) []string {
	return delimiterRegex.Split(raw, -1)
}

// SplitAll splits every raw version, preserving order.
func SplitAll(raws []string) [][]string {
	rows := make([][]string, len(raws))
	for i, raw := range raws {
		rows[i] = Split(raw)
	}
	return rows
}

// Width returns the largest column count across rows.
func Width(rows [][]string) int {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}
