package builder

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mdslide/mdslide/internal/markdown"
	"github.com/mdslide/mdslide/internal/render"
	"github.com/mdslide/mdslide/internal/resource"
	"github.com/mdslide/mdslide/internal/snippet"
	"github.com/mdslide/mdslide/internal/theme"
)

// Builder turns a flat markdown.Element stream into a Presentation. The
// presenter constructs a fresh Builder for every load and reload; a Builder
// carries per-build state (the snippet sequence counter, the include stack,
// and a list_item_newlines directive's override of its options).
type Builder struct {
	opts      Options
	ctx       context.Context
	executor  *snippet.Executor
	resources *resource.Cache
	parser    *markdown.Parser

	snippetSeq   int
	includeStack []string
}

// New validates opts and returns a ready Builder.
func New(ctx context.Context, opts Options, executor *snippet.Executor, resources *resource.Cache) (*Builder, error) {
	opts.setDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Builder{
		opts:      opts,
		ctx:       ctx,
		executor:  executor,
		resources: resources,
		parser:    markdown.New(),
	}, nil
}

func (b *Builder) nextSnippetSeq() int {
	b.snippetSeq++
	return b.snippetSeq
}

// elementCtx wraps one markdown.Element with the builder-local bookkeeping
// a handful of emission rules need (currently just the raw element; kept as
// its own type so buildSnippet and friends don't need to change signature
// if that bookkeeping grows).
type elementCtx struct {
	raw markdown.Element
}

// Build consumes the full element stream of one document (already
// front-matter-stripped by the caller, or with a leading KindFrontMatter
// element which is simply skipped here) and produces the presentation.
func (b *Builder) Build(elements []markdown.Element) (*Presentation, error) {
	pres := &Presentation{}

	slides, err := b.splitSlides(elements)
	if err != nil {
		return nil, err
	}

	for _, raw := range slides {
		slide, skip, err := b.buildSlide(raw)
		if err != nil {
			return nil, err
		}
		if skip {
			continue
		}
		pres.Slides = append(pres.Slides, slide)
	}

	if len(pres.Slides) == 0 {
		pres.Slides = []Slide{{Chunks: []SlideChunk{{}}}}
	}

	pres.Modals = []Modal{
		{Kind: ModalSlideIndex, Slide: b.buildSlideIndexModal(pres.Slides)},
		{Kind: ModalKeyBindings, Slide: b.buildKeyBindingsModal()},
	}

	return pres, nil
}

// splitSlides breaks the flat element stream into per-slide groups. A new
// slide starts at: an explicit `end_slide` directive comment, a thematic
// break when EndSlideShorthand is set, or (when ImplicitSlideEnds is set) a
// level-1 heading following any prior slide content.
func (b *Builder) splitSlides(elements []markdown.Element) ([][]markdown.Element, error) {
	var slides [][]markdown.Element
	var current []markdown.Element

	flush := func() {
		if len(current) > 0 {
			slides = append(slides, current)
			current = nil
		}
	}

	for _, el := range elements {
		switch el.Kind {
		case markdown.KindFrontMatter:
			continue
		case markdown.KindThematicBreak:
			if b.opts.EndSlideShorthand {
				flush()
				continue
			}
		case markdown.KindComment:
			dir, ok, err := parseDirective(el.Pos, el.CommentBody, b.opts.CommandPrefix)
			if err != nil {
				return nil, err
			}
			if ok && dir.kind == dirEndSlide {
				current = append(current, el)
				flush()
				continue
			}
		case markdown.KindHeading:
			if b.opts.ImplicitSlideEnds && el.HeadingLevel == 1 && len(current) > 0 {
				flush()
			}
		}
		current = append(current, el)
	}
	flush()
	return slides, nil
}

// buildSlide compiles one slide's elements into chunks of render operations.
func (b *Builder) buildSlide(elements []markdown.Element) (Slide, bool, error) {
	st := newSlideState()

	var chunks []SlideChunk
	var chunk []render.Operation

	prelude := []render.Operation{
		render.SetColors{Colors: theme.Colors{Foreground: b.opts.Theme.DefaultStyle.Style.Colors.Foreground, Background: b.opts.Theme.DefaultStyle.Style.Colors.Background}},
		render.ClearScreen{},
		render.ApplyMargin{Margin: render.MarginProperties{Horizontal: theme.Margin{Fixed: 4}, Top: 1, Bottom: 1}},
	}
	chunk = append(chunk, prelude...)

	for _, el := range elements {
		switch el.Kind {
		case markdown.KindFrontMatter:
			continue

		case markdown.KindComment:
			dir, ok, err := parseDirective(el.Pos, el.CommentBody, b.opts.CommandPrefix)
			if err != nil {
				return Slide{}, false, err
			}
			if !ok {
				continue
			}
			if err := b.applyDirective(st, dir, &chunks, &chunk); err != nil {
				return Slide{}, false, err
			}
			if dir.kind == dirEndSlide {
				goto finalize
			}
			continue

		case markdown.KindHeading, markdown.KindSetexHeading:
			b.emitHeading(st, el, &chunk)

		case markdown.KindParagraph:
			b.emitParagraph(st, el, &chunk)

		case markdown.KindList:
			b.emitList(st, el, &chunk)

		case markdown.KindTable:
			b.emitTable(st, el, &chunk)

		case markdown.KindBlockQuote:
			b.emitBlockQuote(el, &chunk)

		case markdown.KindAlert:
			b.emitAlert(el, &chunk)

		case markdown.KindImage:
			if err := b.emitImage(el, &chunk); err != nil {
				return Slide{}, false, err
			}

		case markdown.KindSnippet:
			if err := b.buildSnippet(st, elementCtx{raw: el}, &chunk); err != nil {
				return Slide{}, false, err
			}

		case markdown.KindThematicBreak:
			chunk = append(chunk, render.RenderLineBreak{})
		}

		st.lastElement = lastOther
	}

finalize:
	if st.skipSlide {
		return Slide{}, true, nil
	}

	if !st.ignoreFooter {
		chunk = append(chunk, b.footerOperations(st)...)
	}
	chunks = append(chunks, SlideChunk{Operations: chunk, Mutators: mutatorsOf(st)})

	return Slide{Title: st.title, Chunks: chunks}, false, nil
}

func mutatorsOf(st *slideState) []Mutator {
	if st.highlight == nil {
		return nil
	}
	return []Mutator{st.highlight}
}

// applyDirective dispatches one parsed directive against the in-progress
// slide, possibly closing the current chunk on a pause.
func (b *Builder) applyDirective(st *slideState, dir directive, chunks *[]SlideChunk, chunk *[]render.Operation) error {
	switch dir.kind {
	case dirPause:
		*chunks = append(*chunks, SlideChunk{Operations: *chunk, Mutators: mutatorsOf(st)})
		*chunk = nil
	case dirEndSlide:
		// handled by caller
	case dirNewLine:
		for i := 0; i < dir.lines; i++ {
			*chunk = append(*chunk, render.RenderLineBreak{})
		}
	case dirJumpToMiddle:
		*chunk = append(*chunk, render.JumpToVerticalCenter{})
	case dirColumnLayout:
		*chunk = append(*chunk, render.InitColumnLayout{Weights: dir.weights})
		st.layout = layoutInLayout
		st.layoutN = len(dir.weights)
		st.needsEnterColumn = true
	case dirColumn:
		*chunk = append(*chunk, render.EnterColumn{Column: dir.column})
		st.layout = layoutInColumn
		st.layoutColumn = dir.column
		st.needsEnterColumn = false
	case dirResetLayout:
		*chunk = append(*chunk, render.ExitLayout{})
		st.layout = layoutDefault
	case dirIncrementalLists:
		flag := dir.flag
		st.incrementalLists = &flag
	case dirNoFooter:
		st.ignoreFooter = true
	case dirFontSize:
		st.fontSize = dir.fontSize
	case dirAlignment:
		st.alignment = dir.alignment
	case dirSkipSlide:
		st.skipSlide = true
	case dirListItemNewlines:
		b.opts.ListItemNewlines = dir.lines
	case dirInclude:
		included, err := b.expandInclude(dir.path)
		if err != nil {
			return err
		}
		for _, iel := range included {
			switch iel.Kind {
			case markdown.KindHeading, markdown.KindSetexHeading:
				b.emitHeading(st, iel, chunk)
			case markdown.KindParagraph:
				b.emitParagraph(st, iel, chunk)
			case markdown.KindList:
				b.emitList(st, iel, chunk)
			case markdown.KindTable:
				b.emitTable(st, iel, chunk)
			case markdown.KindBlockQuote:
				b.emitBlockQuote(iel, chunk)
			case markdown.KindAlert:
				b.emitAlert(iel, chunk)
			case markdown.KindSnippet:
				if err := b.buildSnippet(st, elementCtx{raw: iel}, chunk); err != nil {
					return err
				}
			}
		}
	case dirSnippetOutput:
		ref, ok := st.snippetIDs[dir.id]
		if !ok {
			return &DirectiveError{Message: fmt.Sprintf("builder: no snippet with id %q on this slide", dir.id)}
		}
		*chunk = append(*chunk, render.RenderDynamic{Source: &executionOutputBlock{handle: ref.handle, style: b.opts.Theme.ExecutionOutput.Style}})
	case dirSpeakerNote:
		// speaker notes are out of the render path entirely; the note is
		// parsed and discarded, neither stored nor rendered.
	}
	return nil
}

// expandInclude re-parses a referenced file's elements, detecting cycles
// via the builder's include stack.
func (b *Builder) expandInclude(path string) ([]markdown.Element, error) {
	for _, seen := range b.includeStack {
		if seen == path {
			return nil, fmt.Errorf("builder: include cycle detected at %q", path)
		}
	}
	contents, err := b.readIncludeFile(path, 0, 0)
	if err != nil {
		return nil, err
	}
	b.includeStack = append(b.includeStack, path)
	defer func() { b.includeStack = b.includeStack[:len(b.includeStack)-1] }()

	elements, err := b.parser.Parse(path, []byte(contents))
	if err != nil {
		return nil, err
	}
	for _, el := range elements {
		if el.Kind == markdown.KindFrontMatter {
			return nil, fmt.Errorf("builder: included file %q must not contain front matter", path)
		}
	}
	return elements, nil
}

// readIncludeFile loads path (optionally slicing to a 1-based inclusive
// line range when start or end is non-zero; a zero start means the first
// line and a zero end the last), resolved against BaseDir
// and cached through the resource cache.
func (b *Builder) readIncludeFile(path string, start, end int) (string, error) {
	full := path
	if !strings.HasPrefix(path, "/") {
		full = b.opts.BaseDir + "/" + path
	}
	v, err := b.resources.GetOrLoad(full, func(abs string) (any, error) {
		data, err := os.ReadFile(abs)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	})
	if err != nil {
		return "", err
	}
	contents := v.(string)
	if start == 0 && end == 0 {
		return contents, nil
	}
	lines := strings.Split(contents, "\n")
	if start < 1 {
		start = 1
	}
	if end == 0 || end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return "", fmt.Errorf("builder: invalid line range %d..%d for %q", start, end, path)
	}
	return strings.Join(lines[start-1:end], "\n"), nil
}

func (b *Builder) alignmentFor(st *slideState, element theme.ElementType) theme.Alignment {
	a := b.opts.Theme.Alignment(element)
	switch st.alignment {
	case "left":
		a.Kind = theme.AlignLeft
	case "center":
		a.Kind = theme.AlignCenter
	case "right":
		a.Kind = theme.AlignRight
	}
	return a
}
