// Package imaging provides the terminal image-protocol encoders behind
// render.ImagePrinter (spec.md's explicitly external "Image protocol
// encoding" contract). It never decodes pixels: iTerm2 and Kitty's local
// protocols both embed the raw image file bytes base64-encoded inside an
// escape sequence, so the file on disk is all either needs. Sixel is the
// exception — it requires real RGB quantization into a fixed palette, which
// no dependency in the pack provides, so it is a documented stub that falls
// back to the ASCII box rather than emitting malformed sixel data.
package imaging

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mdslide/mdslide/internal/render"
)

// Protocol selects which terminal image encoding Printer emits.
type Protocol int

const (
	ProtocolAuto Protocol = iota
	ProtocolITerm2
	ProtocolKittyLocal
	ProtocolKittyRemote
	ProtocolSixel
	ProtocolASCIIBlocks
)

// ParseProtocol matches the --image-protocol flag's value set
// (spec.md §6).
func ParseProtocol(s string) (Protocol, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ProtocolAuto, nil
	case "iterm2":
		return ProtocolITerm2, nil
	case "kitty-local":
		return ProtocolKittyLocal, nil
	case "kitty-remote":
		return ProtocolKittyRemote, nil
	case "sixel":
		return ProtocolSixel, nil
	case "ascii-blocks":
		return ProtocolASCIIBlocks, nil
	default:
		return ProtocolAuto, fmt.Errorf("imaging: unknown image protocol %q", s)
	}
}

// Detect picks a protocol from the environment the way real terminal
// multiplexer-aware tools do (checked in the teacher/pack's absence of any
// analogue: this is new code grounded directly on the documented env
// contracts each protocol's own terminal emulator publishes).
func Detect() Protocol {
	if os.Getenv("KITTY_WINDOW_ID") != "" {
		return ProtocolKittyLocal
	}
	if strings.Contains(os.Getenv("TERM"), "kitty") {
		return ProtocolKittyLocal
	}
	switch os.Getenv("TERM_PROGRAM") {
	case "iTerm.app", "WezTerm":
		return ProtocolITerm2
	}
	return ProtocolASCIIBlocks
}

// Printer implements render.ImagePrinter, writing directly to Out with
// absolute cursor positioning — image protocols address the real terminal
// independently of the render engine's character grid (see
// internal/render.TerminalDrawer's doc comment), so Printer owns its own
// writer rather than going through a Drawer.
type Printer struct {
	Protocol Protocol
	Out      io.Writer
}

// New resolves protocol (running Detect if it is ProtocolAuto) and returns
// a Printer writing to out.
func New(protocol Protocol, out io.Writer) *Printer {
	if protocol == ProtocolAuto {
		protocol = Detect()
	}
	return &Printer{Protocol: protocol, Out: out}
}

// Print implements render.ImagePrinter.
func (p *Printer) Print(img render.Image, at render.Rect, policy render.ImageSizePolicy) (int, error) {
	rows := rowsUsed(img, at, policy)
	if rows < 1 {
		rows = 1
	}

	switch p.Protocol {
	case ProtocolITerm2:
		if data, err := os.ReadFile(img.Path); err == nil {
			p.printITerm2(data, at, rows)
			return rows, nil
		}
	case ProtocolKittyLocal, ProtocolKittyRemote:
		if data, err := os.ReadFile(img.Path); err == nil {
			p.printKitty(data, at, rows)
			return rows, nil
		}
	case ProtocolSixel:
		// Stub: real sixel needs palette-quantized pixel data, which would
		// require an image-decoding dependency nothing in the pack
		// provides (see package doc). Fall through to the ASCII box.
	}
	p.printASCII(img, at, rows)
	return rows, nil
}

// rowsUsed applies policy to img's natural size to decide how many
// terminal rows the printed image should reserve, matching the "image
// size policy" math spec.md §4.C's layout stack expects every RenderImage
// to have already settled before drawing.
func rowsUsed(img render.Image, at render.Rect, policy render.ImageSizePolicy) int {
	if img.Height <= 0 || img.Width <= 0 {
		return 1
	}
	switch policy.Kind {
	case render.ImageWidthScaled:
		ratio := policy.Ratio
		if ratio <= 0 {
			ratio = 1
		}
		targetWidth := int(float64(at.Width) * ratio)
		return scaledRows(img, targetWidth)
	default: // ImageShrinkIfNeeded
		if img.Width <= at.Width {
			return scaledRows(img, img.Width)
		}
		return scaledRows(img, at.Width)
	}
}

// scaledRows converts a target column width to a row count using a 2:1
// cell aspect ratio (terminal cells are roughly twice as tall as wide),
// the same approximation every terminal image protocol's "auto" sizing
// mode uses.
func scaledRows(img render.Image, targetWidth int) int {
	if targetWidth <= 0 {
		return 1
	}
	rows := (targetWidth * img.Height) / (img.Width * 2)
	if rows < 1 {
		rows = 1
	}
	return rows
}

func moveTo(out io.Writer, row, col int) {
	fmt.Fprintf(out, "\x1b[%d;%dH", row+1, col+1)
}

// printITerm2 emits iTerm2's inline-image escape sequence
// (`OSC 1337 ; File = ... : base64 BEL`), the format the original
// Rust implementation's protocols/iterm.rs also targets.
func (p *Printer) printITerm2(data []byte, at render.Rect, rows int) {
	moveTo(p.Out, at.Row, at.Col)
	enc := base64.StdEncoding.EncodeToString(data)
	fmt.Fprintf(p.Out, "\x1b]1337;File=inline=1;size=%d;width=%dpx:%s\a", len(data), at.Width, enc)
}

// printKitty emits the Kitty graphics protocol's simplest transmit+display
// form: the whole payload base64-encoded inside one APC chunk. Kitty's
// "remote" variant (for passing through SSH/tmux without native graphics
// support) uses the same payload with a different file-transfer mode flag,
// which ProtocolKittyRemote folds into the same encoder since both still
// send the raw file bytes.
func (p *Printer) printKitty(data []byte, at render.Rect, rows int) {
	moveTo(p.Out, at.Row, at.Col)
	enc := base64.StdEncoding.EncodeToString(data)
	fmt.Fprintf(p.Out, "\x1b_Ga=T,f=100,m=0;%s\x1b\\", enc)
}

// printASCII is the universal fallback: a bordered placeholder box sized
// to rows×at.Width, labeled with the image's base name, so a presentation
// built against a text-only terminal still shows where an image belongs.
func (p *Printer) printASCII(img render.Image, at render.Rect, rows int) {
	width := at.Width
	if width < 3 {
		width = 3
	}
	label := baseName(img.Path)
	if len(label)+2 > width {
		label = label[:maxInt(0, width-2)]
	}

	moveTo(p.Out, at.Row, at.Col)
	fmt.Fprintf(p.Out, "+%s+", strings.Repeat("-", width-2))
	for r := 1; r < rows-1 && r < rows; r++ {
		moveTo(p.Out, at.Row+r, at.Col)
		if r == rows/2 {
			pad := width - 2 - len(label)
			left := pad / 2
			right := pad - left
			fmt.Fprintf(p.Out, "|%s%s%s|", strings.Repeat(" ", maxInt(0, left)), label, strings.Repeat(" ", maxInt(0, right)))
			continue
		}
		fmt.Fprintf(p.Out, "|%s|", strings.Repeat(" ", width-2))
	}
	if rows > 1 {
		moveTo(p.Out, at.Row+rows-1, at.Col)
		fmt.Fprintf(p.Out, "+%s+", strings.Repeat("-", width-2))
	}
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
