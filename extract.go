package revisor

import (
	"regexp"
	"sort"
	"strings"
)

// TagType labels a tagged segment recovered from narrative text. JOURNAL is a
// payload marker, not a finding type; everything else classifies a finding.
type TagType string

const (
	TagRisk    TagType = "RISK"
	TagAML     TagType = "AML"
	TagEntry   TagType = "ENTRY"
	TagMemo    TagType = "MEMO"
	TagJournal TagType = "JOURNAL"
)

var findingTypes = map[TagType]bool{
	TagRisk:  true,
	TagAML:   true,
	TagEntry: true,
	TagMemo:  true,
}

// Tag is one extracted segment in document order.
type Tag struct {
	Type    TagType
	Content string
}

var (
	summaryTagRe = regexp.MustCompile(`(?s)<audit_summary>(.*?)</audit_summary>`)
	journalTagRe = regexp.MustCompile(`(?s)<journal_json>(.*?)</journal_json>`)
	bracketRe    = regexp.MustCompile(`\[([A-Za-z]{2,}):`)
)

type taggedSpan struct {
	tag        Tag
	start, end int
}

// ExtractTags recovers tagged segments from narrative text. Two markup
// dialects are supported: the <audit_summary>/<journal_json> tag form and the
// [TYPE: content] bracket form. The tag form is tried first; bracket matches
// that overlap a span already claimed by it are dropped, everything else is
// merged and returned in document order.
//
// Segments with an unrecognized type token are downgraded to MEMO, never
// discarded. Journal payloads are returned as opaque text, sliced to the
// outermost {...} span when braces are present; their JSON validity is the
// validator's concern, not the extractor's.
func ExtractTags(text string) []Tag {
	spans := extractTagForm(text)
	spans = append(spans, extractBracketForm(text, spans)...)

	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	tags := make([]Tag, 0, len(spans))
	for _, s := range spans {
		tags = append(tags, s.tag)
	}
	return tags
}

func extractTagForm(text string) []taggedSpan {
	var spans []taggedSpan
	for _, m := range summaryTagRe.FindAllStringSubmatchIndex(text, -1) {
		raw := strings.TrimSpace(text[m[2]:m[3]])
		spans = append(spans, taggedSpan{tag: classifySummary(raw), start: m[0], end: m[1]})
	}
	for _, m := range journalTagRe.FindAllStringSubmatchIndex(text, -1) {
		raw := strings.TrimSpace(text[m[2]:m[3]])
		spans = append(spans, taggedSpan{
			tag:   Tag{Type: TagJournal, Content: sliceJSONObject(raw)},
			start: m[0],
			end:   m[1],
		})
	}
	return spans
}

func extractBracketForm(text string, claimed []taggedSpan) []taggedSpan {
	var spans []taggedSpan
	for _, m := range bracketRe.FindAllStringSubmatchIndex(text, -1) {
		end, ok := matchBracket(text, m[0])
		if !ok {
			// Unterminated bracket: partial markup, skip it.
			continue
		}
		if overlaps(m[0], end, claimed) || overlaps(m[0], end, spans) {
			continue
		}

		token := TagType(strings.ToUpper(text[m[2]:m[3]]))
		content := strings.TrimSpace(text[m[3]+1 : end-1])
		tag := Tag{Type: token, Content: content}
		switch {
		case token == TagJournal:
			tag.Content = sliceJSONObject(content)
		case !findingTypes[token]:
			tag.Type = TagMemo
		}
		spans = append(spans, taggedSpan{tag: tag, start: m[0], end: end})
	}
	return spans
}

// classifySummary splits a "TYPE: content" summary body. Without a colon the
// whole body becomes a MEMO; with one, an unrecognized type token also falls
// back to MEMO but keeps only the content part.
func classifySummary(raw string) Tag {
	before, after, found := strings.Cut(raw, ":")
	if !found {
		return Tag{Type: TagMemo, Content: raw}
	}
	token := TagType(strings.ToUpper(strings.Trim(before, "[] \t\n")))
	content := strings.TrimSpace(after)
	if !findingTypes[token] {
		return Tag{Type: TagMemo, Content: content}
	}
	return Tag{Type: token, Content: content}
}

// matchBracket returns the position just past the ']' matching the '[' at
// start, tracking nesting so JSON arrays inside a payload do not cut the
// segment short.
func matchBracket(text string, start int) (int, bool) {
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

func overlaps(start, end int, claimed []taggedSpan) bool {
	for _, c := range claimed {
		if start < c.end && c.start < end {
			return true
		}
	}
	return false
}

// sliceJSONObject narrows a captured journal segment to the span between the
// first '{' and the last '}'. Without braces the raw capture passes through
// unchanged for the validator to reject.
func sliceJSONObject(s string) string {
	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")
	if first >= 0 && last > first {
		return s[first : last+1]
	}
	return s
}
