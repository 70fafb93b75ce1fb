package guess

import (
	"strings"
)

// extractNameAndYear cleans a raw name fragment and splits off a trailing year.
func extractNameAndYear(name string) (string, string) {
	if name == "" {
		return name, ""
	}

	formatted := name
	year := ""

	if yearMatches := yearRangeRe.FindStringSubmatch(formatted); len(yearMatches) > 1 {
		year = yearMatches[1]

		// Keep only the part before the year unless the year is the whole title
		if yearIndex := strings.Index(formatted, year); yearIndex > 0 {
			formatted = strings.TrimRight(formatted[:yearIndex], " ([{-_.")
		}
	}

	// Tags like WEB-DL and H.264 must go before separators are rewritten
	formatted = encodingTagsRe.ReplaceAllString(formatted, "")

	formatted = strings.ReplaceAll(formatted, ".", " ")
	formatted = strings.ReplaceAll(formatted, "_", " ")
	formatted = strings.ReplaceAll(formatted, " - ", " ")

	return cleanName(formatted), year
}

// cleanName performs basic cleaning on a series name.
func cleanName(name string) string {
	if name == "" {
		return ""
	}

	result := emptyBracketsRe.ReplaceAllString(name, "")
	result = strings.Join(strings.Fields(result), " ")

	// Drop leading/trailing separator characters left behind by the marker cut
	result = strings.Trim(result, "-_–—|: ")

	return strings.TrimSpace(result)
}

// stripGroupTag removes a leading "[Group]" release tag.
func stripGroupTag(name string) string {
	return groupTagRe.ReplaceAllString(name, "")
}

// seriesFrom extracts the series name from a stem. markerIndex is where the
// season/episode marker begins, or -1 when the stem has none.
func seriesFrom(stem string, markerIndex int) string {
	if markerIndex > 0 {
		showPart := strings.TrimRight(stem[:markerIndex], ".-_ ")
		if name, _ := extractNameAndYear(showPart); name != "" {
			return name
		}
	}
	if markerIndex == 0 {
		return ""
	}
	name, _ := extractNameAndYear(stem)
	return name
}
