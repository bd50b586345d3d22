package builder

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mdslide/mdslide/internal/markdown"
)

// DirectiveError carries the source position of a malformed directive
// comment, per spec.md §4.E's "directive errors carry the source position".
type DirectiveError struct {
	Pos     markdown.Position
	Message string
}

func (e *DirectiveError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Pos.Path, e.Pos.Line, e.Message)
}

// directiveKind tags which recognized command a comment decoded to.
type directiveKind int

const (
	dirUnrecognized directiveKind = iota
	dirPause
	dirEndSlide
	dirNewLine
	dirJumpToMiddle
	dirColumnLayout
	dirColumn
	dirResetLayout
	dirIncrementalLists
	dirNoFooter
	dirFontSize
	dirAlignment
	dirSkipSlide
	dirListItemNewlines
	dirInclude
	dirSnippetOutput
	dirSpeakerNote
)

// directive is one parsed command comment.
type directive struct {
	kind      directiveKind
	lines     int     // new_lines: N
	weights   []uint8 // column_layout
	column    int     // column: i
	flag      bool    // incremental_lists: true|false
	fontSize  uint8
	alignment string
	path      string // include
	id        string // snippet_output
	note      string // speaker_note
}

// parseDirective parses a comment's trimmed body: if it starts with
// prefix, the remainder is YAML-decoded into one recognized command.
// Everything else — including multi-line comments, vim: lines, and
// `{{{`/`}}}` folds — is silently ignored by returning ok=false.
func parseDirective(pos markdown.Position, body, prefix string) (directive, bool, error) {
	trimmed := strings.TrimSpace(body)
	if strings.Contains(trimmed, "\n") {
		return directive{}, false, nil
	}
	if strings.HasPrefix(trimmed, "vim:") || strings.HasPrefix(trimmed, "{{{") || strings.HasPrefix(trimmed, "}}}") {
		return directive{}, false, nil
	}
	if !strings.HasPrefix(trimmed, prefix) {
		return directive{}, false, nil
	}
	rest := strings.TrimSpace(strings.TrimPrefix(trimmed, prefix))

	var raw any
	if err := yaml.Unmarshal([]byte(rest), &raw); err != nil {
		return directive{}, true, &DirectiveError{Pos: pos, Message: fmt.Sprintf("invalid directive YAML: %v", err)}
	}

	switch v := raw.(type) {
	case string:
		return directiveFromKeyword(pos, v)
	case map[string]any:
		for key, val := range v {
			return directiveFromKeyValue(pos, key, val)
		}
	}
	return directive{}, true, &DirectiveError{Pos: pos, Message: fmt.Sprintf("unrecognized directive %q", rest)}
}

func directiveFromKeyword(pos markdown.Position, word string) (directive, bool, error) {
	switch word {
	case "pause":
		return directive{kind: dirPause}, true, nil
	case "end_slide":
		return directive{kind: dirEndSlide}, true, nil
	case "new_line":
		return directive{kind: dirNewLine, lines: 1}, true, nil
	case "jump_to_middle":
		return directive{kind: dirJumpToMiddle}, true, nil
	case "reset_layout":
		return directive{kind: dirResetLayout}, true, nil
	case "no_footer":
		return directive{kind: dirNoFooter}, true, nil
	case "skip_slide":
		return directive{kind: dirSkipSlide}, true, nil
	default:
		return directive{}, true, &DirectiveError{Pos: pos, Message: fmt.Sprintf("unrecognized directive %q", word)}
	}
}

func directiveFromKeyValue(pos markdown.Position, key string, val any) (directive, bool, error) {
	fail := func(msg string) (directive, bool, error) {
		return directive{}, true, &DirectiveError{Pos: pos, Message: msg}
	}

	switch key {
	case "new_lines":
		n, ok := toInt(val)
		if !ok {
			return fail("new_lines requires an integer")
		}
		return directive{kind: dirNewLine, lines: n}, true, nil
	case "column_layout":
		list, ok := val.([]any)
		if !ok || len(list) == 0 {
			return fail("column_layout requires a non-empty list")
		}
		weights := make([]uint8, 0, len(list))
		for _, item := range list {
			n, ok := toInt(item)
			if !ok || n <= 0 {
				return fail("column_layout weights must all be > 0")
			}
			weights = append(weights, uint8(n))
		}
		return directive{kind: dirColumnLayout, weights: weights}, true, nil
	case "column":
		n, ok := toInt(val)
		if !ok {
			return fail("column requires an integer")
		}
		return directive{kind: dirColumn, column: n}, true, nil
	case "incremental_lists":
		b, ok := val.(bool)
		if !ok {
			return fail("incremental_lists requires a boolean")
		}
		return directive{kind: dirIncrementalLists, flag: b}, true, nil
	case "font_size":
		n, ok := toInt(val)
		if !ok || n < 1 || n > 7 {
			return fail("font_size must be an integer in 1..7")
		}
		return directive{kind: dirFontSize, fontSize: uint8(n)}, true, nil
	case "alignment":
		s, ok := val.(string)
		if !ok || (s != "left" && s != "center" && s != "right") {
			return fail("alignment must be one of left|center|right")
		}
		return directive{kind: dirAlignment, alignment: s}, true, nil
	case "list_item_newlines":
		n, ok := toInt(val)
		if !ok || n <= 0 {
			return fail("list_item_newlines must be > 0")
		}
		return directive{kind: dirListItemNewlines, lines: n}, true, nil
	case "include":
		s, ok := val.(string)
		if !ok || s == "" {
			return fail("include requires a path")
		}
		return directive{kind: dirInclude, path: s}, true, nil
	case "snippet_output":
		s, ok := val.(string)
		if !ok || s == "" {
			return fail("snippet_output requires an id")
		}
		return directive{kind: dirSnippetOutput, id: s}, true, nil
	case "speaker_note":
		s, ok := val.(string)
		if !ok {
			return fail("speaker_note requires a string")
		}
		return directive{kind: dirSpeakerNote, note: s}, true, nil
	default:
		return fail(fmt.Sprintf("unrecognized directive %q", key))
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
