package builder

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"

	"github.com/mdslide/mdslide/internal/markdown"
	"github.com/mdslide/mdslide/internal/render"
	"github.com/mdslide/mdslide/internal/snippet"
	"github.com/mdslide/mdslide/internal/theme"
)

// snippetHandleRef is what a slide-scoped symbol table entry points at: the
// handle a later `snippet_output: id` directive renders, registered the
// moment an `+id`-carrying Exec+Snippet block is built.
type snippetHandleRef struct {
	handle *snippet.ExecutionHandle
}

// buildSnippet implements spec.md §4.E's "Snippet handling" steps for one
// fenced code block element, appending operations to the current chunk.
func (b *Builder) buildSnippet(st *slideState, el elementCtx, chunk *[]render.Operation) error {
	language, attrs, err := snippet.ParseInfoString(el.raw.SnippetInfo)
	if err != nil {
		return &DirectiveError{Pos: el.raw.Pos, Message: err.Error()}
	}
	contents := el.raw.SnippetContents

	if language == "file" {
		path, lang, start, end, ferr := parseFileSnippetBody(contents)
		if ferr != nil {
			return &DirectiveError{Pos: el.raw.Pos, Message: ferr.Error()}
		}
		loaded, rerr := b.readIncludeFile(path, start, end)
		if rerr != nil {
			return &DirectiveError{Pos: el.raw.Pos, Message: rerr.Error()}
		}
		language, contents = lang, loaded
	}

	for _, autoLang := range b.opts.AutoRenderLanguages {
		if autoLang == language {
			attrs.Representation = snippet.ReprRender
		}
	}

	if !b.executionAllowed(attrs) {
		attrs.Execution = snippet.ExecNone
	}

	s := snippet.Snippet{Contents: contents, Language: language, Attributes: attrs}

	lines, herr := b.opts.Highlighter.Highlight(language, contents)
	if herr != nil {
		return herr
	}

	codeStyle := b.opts.Theme.Code.Style
	maxNumWidth := len(strconv.Itoa(len(lines)))

	for i, line := range lines {
		var prefix string
		if attrs.LineNumbers {
			prefix = fmt.Sprintf("%*d ", maxNumWidth, i+1)
		}
		dimmed := st.highlight != nil && !currentGroupContains(attrs.HighlightGroups, st.highlight.Current, i+1)
		weighted := render.WeightedLine{Line: prefixLine(prefix, line, codeStyle), Dimmed: dimmed}
		*chunk = append(*chunk, render.RenderText{Line: weighted, Alignment: b.opts.Theme.Code.Alignment})
		*chunk = append(*chunk, render.RenderLineBreak{})
	}

	if attrs.Execution == snippet.ExecNone {
		return nil
	}

	if attrs.Execution == snippet.ExecPty || attrs.Execution == snippet.ExecAcquireTerminal {
		id := executionID(attrs, el.raw.Pos, b.nextSnippetSeq())
		argv, workDir, merr := b.executor.Materialize(s, b.opts.BaseDir)
		if merr != nil {
			return merr
		}
		*chunk = append(*chunk,
			render.RenderText{Line: render.WeightedLine{Line: render.Line{{Content: "[press enter to run]", Style: b.opts.Theme.ExecutionOutput.Style}}}},
			render.RenderLineBreak{},
			render.ExecTrigger{ID: id, Argv: argv, Dir: workDir},
		)
		return nil
	}

	handle, rerr := b.executor.Run(b.ctx, executionID(attrs, el.raw.Pos, b.nextSnippetSeq()), s, b.opts.BaseDir)
	if rerr != nil {
		return rerr
	}

	if attrs.ID != "" {
		st.snippetIDs[attrs.ID] = &snippetHandleRef{handle: handle}
	}

	*chunk = append(*chunk, render.RenderAsync{Source: &executionIndicator{handle: handle}, Pollable: handle.State})

	if attrs.ID == "" {
		*chunk = append(*chunk, render.RenderDynamic{Source: &executionOutputBlock{handle: handle, style: b.opts.Theme.ExecutionOutput.Style}})
	}

	return nil
}

// executionAllowed implements the gating rule from spec.md's "Snippet
// handling" step 3.
func (b *Builder) executionAllowed(attrs snippet.Attributes) bool {
	switch {
	case attrs.Representation == snippet.ReprRender:
		return true
	case attrs.Execution == snippet.ExecManual && attrs.Representation == snippet.ReprSnippet:
		return b.opts.EnableSnippetExecution
	default:
		return b.opts.EnableSnippetExecutionReplace
	}
}

func executionID(attrs snippet.Attributes, pos markdown.Position, seq int) string {
	if attrs.ID != "" {
		return attrs.ID
	}
	return fmt.Sprintf("%s:%d:%d", pos.Path, pos.Line, seq)
}

func currentGroupContains(groups []snippet.HighlightGroup, current, line int) bool {
	if current < 0 || current >= len(groups) {
		return true
	}
	return groups[current].Contains(line)
}

func prefixLine(prefix string, line render.Line, base theme.TextStyle) render.Line {
	if prefix == "" {
		return line
	}
	out := make(render.Line, 0, len(line)+1)
	out = append(out, render.Text{Content: prefix, Style: base})
	out = append(out, line...)
	return out
}

func parseFileSnippetBody(body string) (path, language string, start, end int, err error) {
	for _, line := range strings.Split(body, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		switch key {
		case "path":
			path = value
		case "language":
			language = value
		case "start_line":
			start, _ = strconv.Atoi(value)
		case "end_line":
			end, _ = strconv.Atoi(value)
		}
	}
	if path == "" || language == "" {
		return "", "", 0, 0, fmt.Errorf("builder: `file` snippet requires path and language")
	}
	return path, language, start, end, nil
}

// executionIndicator is a RenderAsync source showing
// [not started]/[running]/[finished]/[failed] for a handle.
type executionIndicator struct{ handle *snippet.ExecutionHandle }

func (i *executionIndicator) AsRenderOperations(render.WindowSize) []render.Operation {
	status := i.handle.State.StatusNow()
	label := "[" + status.String() + "]"
	if status == snippet.StatusRunning {
		label = runningSpinnerFrame() + " " + label
	}
	return []render.Operation{
		render.RenderText{Line: render.WeightedLine{Line: render.Line{{Content: label}}}},
		render.RenderLineBreak{},
	}
}

// runningSpinnerFrame picks a spinner.Dot frame off the wall clock. This
// is re-evaluated every frame via AsRenderOperations, so the indicator
// animates for as long as the snippet stays in StatusRunning without the
// builder needing to be re-invoked.
func runningSpinnerFrame() string {
	frames := spinner.Dot.Frames
	if len(frames) == 0 {
		return ""
	}
	fps := spinner.Dot.FPS
	if fps <= 0 {
		fps = time.Second / 10
	}
	idx := int(time.Now().UnixNano()/int64(fps)) % len(frames)
	return frames[idx]
}

// DiffableContent implements render.Diffable.
func (i *executionIndicator) DiffableContent() string {
	return i.handle.State.StatusNow().String()
}

// executionOutputBlock renders a handle's captured output beneath its
// indicator, wrapped using the same BlockLine rule ExecReplace output uses
// (open question 2, SPEC_FULL.md §13).
type executionOutputBlock struct {
	handle *snippet.ExecutionHandle
	style  theme.TextStyle
}

func (o *executionOutputBlock) AsRenderOperations(size render.WindowSize) []render.Operation {
	var ops []render.Operation
	for _, line := range o.handle.State.Lines() {
		ops = append(ops, render.RenderBlockLine{Block: render.BlockLine{
			Text:               render.Line{{Content: line, Style: o.style}},
			BlockLength:        size.Columns,
			RepeatPrefixOnWrap: true,
			Style:              o.style,
		}})
	}
	return ops
}

// DiffableContent implements render.Diffable: joins the captured output so
// a reload only reports a change once new lines actually arrive.
func (o *executionOutputBlock) DiffableContent() string {
	return strings.Join(o.handle.State.Lines(), "\n")
}
