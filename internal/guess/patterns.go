package guess

import (
	"regexp"
	"strconv"
)

// Pattern compilation for episode name parsing
var (
	// explicitRe matches S01E02, s1e2, S01.E02 and S01 E02.
	explicitRe = regexp.MustCompile(`(?i)(?:^|[^a-z0-9])s(\d{1,3})[\s._-]*e(\d{1,4})(?:[^0-9]|$)`)

	// crossRe matches 1x02 and 10x120.
	crossRe = regexp.MustCompile(`(?i)(?:^|[^a-z0-9])(\d{1,2})x(\d{1,3})(?:[^0-9]|$)`)

	// seasonEpisodeRe is the loose combined form used as a last resort.
	seasonEpisodeRe = regexp.MustCompile(`(?i)[sx]?(\d+)[ex](\d+)`)

	// dottedSeasonEpisodeRe matches compact dotted forms: 1.04, 01.4, 10.12.
	// The season is capped at two digits so a leading year like 2024.05 is not read as a season.
	dottedSeasonEpisodeRe = regexp.MustCompile(`(?i)(?:^|[\s_\-\.])([0-9]{1,2})[\. _-]([0-9]{1,2})(?:[^0-9]|$)`)

	// episodeOnlyRe matches E05, Ep 5 and Episode.5 without a season.
	episodeOnlyRe = regexp.MustCompile(`(?i)(?:^|[\s._-])(?:e|ep|episode)[\s._-]*(\d{1,4})(?:[^0-9]|$)`)

	// dashEpisodeRe matches the "Show Name - 05" style common for fansub releases.
	dashEpisodeRe = regexp.MustCompile(`\s-\s*(\d{1,4})(?:v\d)?(?:\s|\[|\(|$)`)

	// groupTagRe matches a leading release group tag such as "[Group] ".
	groupTagRe = regexp.MustCompile(`^\s*\[[^\]]*\]\s*`)

	// yearRangeRe extracts a year or year range; only the first year is kept.
	yearRangeRe = regexp.MustCompile(`(?:^|[^\d])((19|20)\d{2})(?:[\s\-–—]+(?:19|20)\d{2})?(?:[^\d]|$)`)

	// encodingTagsRe removes codec/resolution/source tags to isolate the series title.
	encodingTagsRe = regexp.MustCompile(`(?i)\b(?:HD|HDR|DV|x265|x264|H\.?264|H\.?265|HEVC|AVC|AAC|AC3|DD|DTS|FLAC|MP3|WEB-?DL|WEBRip|BluRay|BDRip|DVDRip|HDTV|720p|1080p|2160p|4K|UHD|SDR|10bit|8bit|PROPER|REPACK|iNTERNAL|LiMiTED|UNRATED|EXTENDED|DiRECTORS?\.?CUT|THEATRICAL|COMPLETE|MULTI|DUAL|DUBBED|SUBBED|SUB|RETAIL|WS|FS|NTSC|PAL|R[1-6]|UNCUT|UNCENSORED)\b`)

	// emptyBracketsRe matches brackets left empty after tag removal.
	emptyBracketsRe = regexp.MustCompile(`\s*[\(\[\{<]\s*[\)\]\}>]`)

	// seasonEpisodePatterns find where season/episode information starts in a name.
	seasonEpisodePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)[sx]?\d+[ex]\d+`),                // S01E01, 1x01, s1e1
		regexp.MustCompile(`(?i)[\s._-](?:s|season)[\s._-]*\d+`), // _Season_02, .S02
		regexp.MustCompile(`(?i)^(?:s|season)[\s._-]*\d+`),       // Season at start
		regexp.MustCompile(`\b\d{1,2}[\. _-]\d{1,2}\b`),          // Dotted format: 1.04
		regexp.MustCompile(`(?i)(?:^|[\s._-])(?:e|ep|episode)[\s._-]*\d+`),
		dashEpisodeRe,
	}
)

// marker describes one way of spelling season and episode numbers in a name.
type marker struct {
	re         *regexp.Regexp
	hasSeason  bool
	confidence float64
	valid      func(season, episode int) bool
}

var markers = []marker{
	{re: explicitRe, hasSeason: true, confidence: 1.0},
	{re: crossRe, hasSeason: true, confidence: 0.9},
	{re: seasonEpisodeRe, hasSeason: true, confidence: 0.7},
	{re: dottedSeasonEpisodeRe, hasSeason: true, confidence: 0.5, valid: func(season, episode int) bool {
		return season > 0 && season <= 100 && episode > 0 && episode <= 300
	}},
	{re: episodeOnlyRe, confidence: 0.6},
	{re: dashEpisodeRe, confidence: 0.5},
}

// findSeasonEpisodeIndex returns where season/episode information starts in name, or -1.
func findSeasonEpisodeIndex(name string) int {
	earliest := -1
	for _, pattern := range seasonEpisodePatterns {
		if loc := pattern.FindStringIndex(name); loc != nil {
			if earliest == -1 || loc[0] < earliest {
				earliest = loc[0]
			}
		}
	}
	return earliest
}

// numbersFrom applies the first matching marker and reports season, episode and the
// marker confidence. ok is false when no marker matched.
func numbersFrom(name string) (season, episode int, m marker, ok bool) {
	for _, candidate := range markers {
		sub := candidate.re.FindStringSubmatch(name)
		if sub == nil {
			continue
		}
		if candidate.hasSeason {
			s, err1 := strconv.Atoi(sub[1])
			e, err2 := strconv.Atoi(sub[2])
			if err1 != nil || err2 != nil {
				continue
			}
			if candidate.valid != nil && !candidate.valid(s, e) {
				continue
			}
			return s, e, candidate, true
		}
		e, err := strconv.Atoi(sub[1])
		if err != nil {
			continue
		}
		return 0, e, candidate, true
	}
	return 0, 0, marker{}, false
}
