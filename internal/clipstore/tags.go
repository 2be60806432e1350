package clipstore

import (
	"slices"
	"strings"
)

// Stage tags form the record state machine. The JSON vocabulary is part of
// the on-disk format and must not change.
const (
	TagStage1    = "stage-1-json"
	TagStage2    = "stage-2-thumbnail"
	TagCompleted = "completed"
)

// TagRank orders stage tags; untagged records rank 0.
func TagRank(tag string) int {
	switch tag {
	case TagStage1:
		return 1
	case TagStage2:
		return 2
	case TagCompleted:
		return 3
	default:
		return 0
	}
}

// IsStageTag reports whether tag belongs to the pipeline state machine.
func IsStageTag(tag string) bool {
	return TagRank(tag) > 0
}

// Stage returns the highest-ranked state tag on the record, or "".
func (m ClipMetadata) Stage() string {
	best := ""
	for _, tag := range m.Tags {
		if TagRank(tag) > TagRank(best) {
			best = tag
		}
	}
	return best
}

// HasTag reports whether the record carries tag.
func (m ClipMetadata) HasTag(tag string) bool {
	return slices.Contains(m.Tags, tag)
}

// advanceTags replaces every state tag with next while keeping any other
// tags in order. It refuses to move a record backwards or sideways.
func advanceTags(tags []string, next string) ([]string, bool) {
	if !IsStageTag(next) {
		return tags, false
	}
	current := ClipMetadata{Tags: tags}.Stage()
	if TagRank(next) <= TagRank(current) {
		return tags, false
	}
	out := make([]string, 0, len(tags)+1)
	for _, tag := range tags {
		if IsStageTag(tag) || strings.HasPrefix(tag, "stage-") {
			continue
		}
		out = append(out, tag)
	}
	return append(out, next), true
}
