package snippet

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseInfoString parses a fenced code block's info string: a language
// token, then whitespace-separated `+attr`/`+attr:value` tokens, then an
// optional trailing `{highlight-spec}`. Duplicate attributes are errors.
func ParseInfoString(info string) (language string, attrs Attributes, err error) {
	info = strings.TrimSpace(info)
	groupSpec := ""
	if i := strings.IndexByte(info, '{'); i >= 0 {
		if !strings.HasSuffix(info, "}") {
			return "", Attributes{}, fmt.Errorf("snippet: unterminated highlight spec in %q", info)
		}
		groupSpec = info[i+1 : len(info)-1]
		info = strings.TrimSpace(info[:i])
	}

	fields := strings.Fields(info)
	if len(fields) == 0 {
		return "", Attributes{}, fmt.Errorf("snippet: missing language in info string")
	}
	language = fields[0]

	attrs = Attributes{ExpectedExecutionResult: ExpectSuccess}
	seen := map[string]bool{}

	for _, tok := range fields[1:] {
		if !strings.HasPrefix(tok, "+") {
			return "", Attributes{}, fmt.Errorf("snippet: unrecognized attribute token %q", tok)
		}
		tok = strings.TrimPrefix(tok, "+")
		key, value, hasValue := strings.Cut(tok, ":")
		if seen[key] {
			return "", Attributes{}, fmt.Errorf("snippet: duplicate attribute %q", key)
		}
		seen[key] = true

		switch key {
		case "image":
			attrs.Representation = ReprImage
		case "render":
			attrs.Representation = ReprRender
		case "exec_replace":
			attrs.Representation = ReprExecReplace
		case "exec":
			attrs.Execution = ExecManual
		case "acquire_terminal":
			attrs.Execution = ExecAcquireTerminal
		case "exec_pty":
			attrs.Execution = ExecPty
		case "validate":
			attrs.Execution = ExecValidate
		case "no_run":
			attrs.Execution = ExecNone
		case "line_numbers":
			attrs.LineNumbers = true
		case "no_background":
			attrs.NoBackground = true
		case "width":
			if !hasValue {
				return "", Attributes{}, fmt.Errorf("snippet: +width requires a value")
			}
			pct, convErr := strconv.Atoi(strings.TrimSuffix(value, "%"))
			if convErr != nil {
				return "", Attributes{}, fmt.Errorf("snippet: invalid +width value %q", value)
			}
			attrs.Width = uint8(pct)
		case "id":
			if !hasValue {
				return "", Attributes{}, fmt.Errorf("snippet: +id requires a value")
			}
			attrs.ID = value
		case "expect":
			switch value {
			case "success":
				attrs.ExpectedExecutionResult = ExpectSuccess
			case "failure":
				attrs.ExpectedExecutionResult = ExpectFailure
			default:
				return "", Attributes{}, fmt.Errorf("snippet: invalid +expect value %q", value)
			}
		default:
			return "", Attributes{}, fmt.Errorf("snippet: unknown attribute %q", key)
		}
	}

	attrs.ExecutionProfile = language
	attrs.HighlightGroups, err = parseHighlightGroups(groupSpec)
	if err != nil {
		return "", Attributes{}, err
	}

	if err := attrs.Validate(); err != nil {
		return "", Attributes{}, err
	}
	return language, attrs, nil
}

// parseHighlightGroups parses `{1, 2-4 | 6}`-style specs: groups separated
// by `|`, each a comma-separated list of `all`, a bare number, or an
// `a-b` range. An empty spec defaults to a single [All] group.
func parseHighlightGroups(spec string) ([]HighlightGroup, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return []HighlightGroup{{Highlights: []Highlight{{All: true}}}}, nil
	}

	var groups []HighlightGroup
	for _, groupSrc := range strings.Split(spec, "|") {
		var highlights []Highlight
		for _, part := range strings.Split(groupSrc, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if part == "all" {
				highlights = append(highlights, Highlight{All: true})
				continue
			}
			if start, end, ok := strings.Cut(part, "-"); ok {
				a, errA := strconv.Atoi(strings.TrimSpace(start))
				b, errB := strconv.Atoi(strings.TrimSpace(end))
				if errA != nil || errB != nil {
					return nil, fmt.Errorf("snippet: invalid highlight range %q", part)
				}
				highlights = append(highlights, Highlight{Start: a, End: b})
				continue
			}
			n, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("snippet: invalid highlight spec %q", part)
			}
			highlights = append(highlights, Highlight{Single: n})
		}
		if len(highlights) == 0 {
			return nil, fmt.Errorf("snippet: empty highlight group in %q", spec)
		}
		groups = append(groups, HighlightGroup{Highlights: highlights})
	}
	return groups, nil
}
