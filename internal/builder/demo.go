package builder

// Demo returns a short, self-contained Markdown document exercising most of
// what a presentation can do: headings, a paused list, a column layout, an
// executable snippet, a blockquote, and an image placeholder. Grounded
// on original_source/src/demo.rs's PRESENTATION constant, expanded per
// SPEC_FULL.md's supplemented-features note to also cover the directives and
// snippet execution the original's minimal fixture left out. Used by the
// `mdslide demo` subcommand and as a realistic builder test fixture rather
// than inventing synthetic Markdown per test.
func Demo() string {
	return `---
theme: dark
---

# mdslide

## a terminal Markdown slideshow

<!-- mdslide: pause -->

Press ` + "`j`" + `/` + "`k`" + ` (or the arrow keys) to move between slides, ` + "`q`" + ` to quit.

<!-- mdslide: end_slide -->

# Lists

* first item
* second item
<!-- mdslide: pause -->
* third item, revealed after a pause

<!-- mdslide: end_slide -->

# Columns

<!-- mdslide: column_layout: [1, 1] -->

<!-- mdslide: column: 0 -->

### left

> mdslide renders Markdown the way a terminal understands it: no browser,
> no headless renderer, just a grid of styled cells.

<!-- mdslide: column: 1 -->

### right

` + "```go +exec" + `
fmt.Println("hello from a +exec snippet")
` + "```" + `

<!-- mdslide: end_slide -->

# Images

![](demo.png "image:width:50%")

<!-- mdslide: end_slide -->
`
}
