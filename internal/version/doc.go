// Package version resolves the latest version of a package from scraped text.
//
// Resolution runs in three stages:
//   - Extract pulls raw version strings out of page text with a pattern.
//   - Split breaks each raw version into columns on '.', '_' and '-'.
//   - Resolve narrows the candidates column by column, keeping only rows that
//     hold the greatest value, then maps the survivor back to one of the
//     original raw strings.
//
// Column values are ordered by Compare, which mixes the numeric part of a
// value with a small weight per letter (a=0.01 ... z=0.26). Letter weights are
// summed rather than ranked positionally, so "1ab" and "1c" are equal. That
// quirk is deliberate; changing it would change which release wins.
//
// Example usage:
//
//	raw := version.Extract(pageText, re)
//	latest, ok := version.Resolve(raw)
//	if !ok {
//	    // latest version could not be determined
//	}
package version
