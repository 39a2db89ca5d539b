package slug

import "strings"

// Make lowercases the input and squashes anything that is not a letter or
// digit into single hyphens, suitable for filenames.
func Make(in string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(in) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
