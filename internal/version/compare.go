package version

import (
	"math/big"
	"regexp"
	"strings"
)

var (
	letterRegex = regexp.MustCompile(`[a-z]`)
	hundred     = big.NewInt(100)
)

// Key is the comparable form of one column value.
//
// The ordering value is Number + Letters/100, where Letters is the sum of the
// letter weights in hundredths. Scaled holds Number*100 + Letters as an
// arbitrary-precision integer, so long numeric columns neither overflow nor
// lose the summed-letter behaviour.
type Key struct {
	Scaled *big.Int
	// Malformed is set when the non-letter remainder is empty or not a base-10
	// integer. Malformed keys sort below every well-formed key.
	Malformed bool
}

// ParseKey decodes a column value into its Key.
func ParseKey(value string) Key {
	value = strings.ToLower(value)

	var letters int64
	for _, l := range letterRegex.FindAllString(value, -1) {
		letters += int64(l[0]-'a') + 1
	}

	remainder := letterRegex.ReplaceAllString(value, "")
	n, ok := new(big.Int).SetString(remainder, 10)
	if !ok {
		return Key{Malformed: true}
	}
	n.Mul(n, hundred)
	n.Add(n, big.NewInt(letters))
	return Key{Scaled: n}
}

// Compare orders two keys, returning -1, 0 or 1.
func (k Key) Compare(other Key) int {
	switch {
	case k.Malformed && other.Malformed:
		return 0
	case k.Malformed:
		return -1
	case other.Malformed:
		return 1
	}
	return k.Scaled.Cmp(other.Scaled)
}

// Compare orders two column values. It returns 1 when a is greater than b.
func Compare(a, b string) int {
	return ParseKey(a).Compare(ParseKey(b))
}
