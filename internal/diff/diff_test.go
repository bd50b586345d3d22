package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mdslide/mdslide/internal/builder"
	"github.com/mdslide/mdslide/internal/render"
	"github.com/mdslide/mdslide/internal/theme"
)

func textChunk(content string) builder.SlideChunk {
	return builder.SlideChunk{Operations: []render.Operation{
		render.RenderText{Line: render.WeightedLine{Line: render.Line{{Content: content}}}},
	}}
}

func presentationOf(slides ...[]builder.SlideChunk) *builder.Presentation {
	p := &builder.Presentation{}
	for _, chunks := range slides {
		p.Slides = append(p.Slides, builder.Slide{Chunks: chunks})
	}
	return p
}

func TestFirstModificationNoDifference(t *testing.T) {
	a := presentationOf([]builder.SlideChunk{textChunk("one")})
	b := presentationOf([]builder.SlideChunk{textChunk("one")})

	_, changed := FirstModification(a, b)
	assert.False(t, changed)
}

func TestFirstModificationContentChangeWithinSlide(t *testing.T) {
	a := presentationOf([]builder.SlideChunk{textChunk("one"), textChunk("two")})
	b := presentationOf([]builder.SlideChunk{textChunk("one"), textChunk("TWO")})

	point, changed := FirstModification(a, b)
	assert.True(t, changed)
	assert.Equal(t, ModificationPoint{SlideIndex: 0, ChunkIndex: 1}, point)
}

func TestFirstModificationNewChunkAppended(t *testing.T) {
	a := presentationOf([]builder.SlideChunk{textChunk("one")})
	b := presentationOf([]builder.SlideChunk{textChunk("one"), textChunk("two")})

	point, changed := FirstModification(a, b)
	assert.True(t, changed)
	assert.Equal(t, ModificationPoint{SlideIndex: 0, ChunkIndex: 1}, point)
}

func TestFirstModificationNewSlideAppended(t *testing.T) {
	a := presentationOf([]builder.SlideChunk{textChunk("one")})
	b := presentationOf([]builder.SlideChunk{textChunk("one")}, []builder.SlideChunk{textChunk("two")})

	point, changed := FirstModification(a, b)
	assert.True(t, changed)
	assert.Equal(t, ModificationPoint{SlideIndex: 1, ChunkIndex: 0}, point)
}

func TestOperationContentDifferentIgnoresColorOnlyChange(t *testing.T) {
	assert.False(t, operationContentDifferent(render.SetColors{}, render.SetColors{Colors: theme.Colors{Foreground: theme.RGB(1, 2, 3)}}))
}
