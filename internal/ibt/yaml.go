package ibt

import (
	"strconv"
	"strings"
)

// parseSessionYAML extracts the handful of session fields the
// normalizer and replay engine need from the embedded YAML blob with a
// line-oriented key-prefix scan. No full YAML parser is used, per
// spec.md §4.2: the blob's indentation-significant structure is never
// traversed, only grepped line by line.
func parseSessionYAML(blob []byte) SessionInfo {
	text := string(blob)
	if i := strings.IndexByte(text, 0); i >= 0 {
		text = text[:i]
	}

	var info SessionInfo
	var haveTrackName, haveDisplayName, haveConfigName, haveTrackLength, haveCarName, haveUserName, haveDriverIdx, haveSessionType bool

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case !haveTrackName && hasPrefix(trimmed, "TrackName:"):
			info.TrackName = valueAfter(trimmed, "TrackName:")
			haveTrackName = true
		case !haveDisplayName && hasPrefix(trimmed, "TrackDisplayName:"):
			info.TrackDisplayName = valueAfter(trimmed, "TrackDisplayName:")
			haveDisplayName = true
		case !haveConfigName && hasPrefix(trimmed, "TrackConfigName:"):
			info.TrackConfigName = valueAfter(trimmed, "TrackConfigName:")
			haveConfigName = true
		case !haveTrackLength && hasPrefix(trimmed, "TrackLength:"):
			info.TrackLength = valueAfter(trimmed, "TrackLength:")
			haveTrackLength = true
		case !haveCarName && hasPrefix(trimmed, "CarScreenName:"):
			info.CarScreenName = valueAfter(trimmed, "CarScreenName:")
			haveCarName = true
		case !haveUserName && hasPrefix(trimmed, "UserName:"):
			info.UserName = valueAfter(trimmed, "UserName:")
			haveUserName = true
		case !haveDriverIdx && hasPrefix(trimmed, "DriverCarIdx:"):
			if n, err := strconv.Atoi(valueAfter(trimmed, "DriverCarIdx:")); err == nil {
				info.DriverCarIdx = n
			}
			haveDriverIdx = true
		case !haveSessionType && hasPrefix(trimmed, "SessionType:"):
			info.SessionType = valueAfter(trimmed, "SessionType:")
			haveSessionType = true
		}
	}

	if info.TrackDisplayName == "" {
		info.TrackDisplayName = info.TrackName
	}
	return info
}

func hasPrefix(line, prefix string) bool {
	return strings.HasPrefix(line, prefix)
}

func valueAfter(line, prefix string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, prefix))
}
