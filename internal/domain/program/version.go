package program

import "regexp"

// MatchVersion applies re to text and returns its single capture group.
// A pattern with a capture-group count other than one, or no match, yields false.
func MatchVersion(re *regexp.Regexp, text string) (string, bool) {
	if re == nil || re.NumSubexp() != 1 {
		return "", false
	}

	match := re.FindStringSubmatch(text)
	if match == nil || match[1] == "" {
		return "", false
	}

	return match[1], true
}

// IsUpToDate reports whether the installed version is present and byte-for-byte
// equal to the latest one. There is no ordering: a newer local build still
// differs from an older upstream string.
func IsUpToDate(installed, latest string) bool {
	return installed != "" && installed == latest
}
