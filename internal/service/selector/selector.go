package selector

import (
	"regexp"
	"strings"

	"github.com/oshokin/ghpm/internal/domain/program"
)

const (
	// nameSeparator splits Debian-style names such as "app_1.2.3_amd64.deb".
	nameSeparator = "_"
	// nameVersionIndex is the token holding the version in such names.
	nameVersionIndex = 1
)

// Suffix normalizes a filter into the lower-cased suffix it matches.
func Suffix(filter string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(filter), program.Wildcard))
}

// SelectAsset returns the first asset, in catalog order, whose lower-cased
// name ends with the filter suffix. Later matches are ignored.
func SelectAsset(assets []program.Asset, filter string) (*program.Asset, bool) {
	suffix := Suffix(filter)

	for i := range assets {
		if strings.HasSuffix(strings.ToLower(assets[i].Name), suffix) {
			return &assets[i], true
		}
	}

	return nil, false
}

// ExtractVersion returns the version encoded in filename. With a pattern it
// takes the single capture group; without one it falls back to the second
// underscore-separated token, which only fits Debian-style names.
func ExtractVersion(filename string, re *regexp.Regexp) (string, bool) {
	if re != nil {
		return program.MatchVersion(re, filename)
	}

	tokens := strings.Split(filename, nameSeparator)
	if len(tokens) <= nameVersionIndex || tokens[nameVersionIndex] == "" {
		return "", false
	}

	return tokens[nameVersionIndex], true
}
