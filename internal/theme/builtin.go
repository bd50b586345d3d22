package theme

// builtinThemes holds the themes shipped with mdslide, keyed by name. Kept
// as plain YAML strings (rather than external files) so the binary never
// depends on a themes directory existing at runtime; `--list-themes` and
// `extends:` both resolve against this map first.
var builtinThemes = map[string]string{
	"dark": `
default_style:
  foreground: "e6e6e6"
slide_title:
  bold: true
  foreground: "61afef"
  alignment:
    kind: center
headings:
  h1: {bold: true, foreground: "61afef"}
  h2: {bold: true, foreground: "56b6c2"}
  h3: {bold: true, foreground: "98c379"}
  h4: {italics: true, foreground: "98c379"}
  h5: {italics: true, foreground: "abb2bf"}
  h6: {italics: true, foreground: "5c6370"}
code:
  background: "282c34"
  foreground: "abb2bf"
execution_output:
  background: "21252b"
  foreground: "98c379"
block_quote:
  foreground: "5c6370"
  italics: true
  prefix: "▍ "
alert:
  note: {icon: "ℹ", title: "Note", style: {foreground: "61afef"}}
  tip: {icon: "✦", title: "Tip", style: {foreground: "98c379"}}
  important: {icon: "★", title: "Important", style: {foreground: "c678dd"}}
  warning: {icon: "▲", title: "Warning", style: {foreground: "e5c07b"}}
  caution: {icon: "✖", title: "Caution", style: {foreground: "e06c75"}}
intro_slide:
  bold: true
  alignment: {kind: center}
footer:
  foreground: "5c6370"
modals:
  foreground: "e6e6e6"
  background: "282c34"
typst:
  background: "ffffff"
mermaid:
  background: "ffffff"
`,
	"light": `
extends: dark
default_style:
  foreground: "2e3440"
code:
  background: "eceff4"
  foreground: "2e3440"
execution_output:
  background: "e5e9f0"
  foreground: "3b4252"
modals:
  foreground: "2e3440"
  background: "eceff4"
`,
}
