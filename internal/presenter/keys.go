package presenter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Command is one action the presenter state machine can apply, matching
// presenter.rs's Command enum (spec.md §4.H).
type Command int

const (
	CmdNone Command = iota
	CmdNext
	CmdNextFast
	CmdPrevious
	CmdPreviousFast
	CmdFirstSlide
	CmdLastSlide
	CmdGoToSlide
	CmdRenderAsyncOperations
	CmdToggleSlideIndex
	CmdToggleKeyBindingsConfig
	CmdCloseModal
	CmdReload
	CmdHardReload
	CmdExit
	CmdSuspend
	CmdRedraw
)

// binding pairs a Command with the bubbles/key.Binding that triggers it.
// Every default except FirstSlide ("gg") and GoToSlide (digits + G) is a
// single keystroke and fits key.Matches directly; the two sequence-shaped
// ones are handled by the model's own pending-buffer logic in model.go,
// which falls back to these bindings for everything else.
type binding struct {
	cmd Command
	key key.Binding
}

// KeyMap is the full set of single-keystroke bindings, built from Bindings
// so a config-loaded override (internal/config) produces the same
// key.Binding/key.Matches dispatch the defaults do.
type KeyMap struct {
	Next           key.Binding
	Previous       key.Binding
	LastSlide      key.Binding
	ToggleIndex    key.Binding
	ToggleBindings key.Binding
	RunTrigger     key.Binding
	HardReload     key.Binding
	Exit           key.Binding
	CloseModal     key.Binding

	bindings []binding
}

// NewKeyMap builds a KeyMap from a Bindings configuration (see
// DefaultBindings). Sequences longer than one token (e.g. "gg") are not
// representable as a single key.Binding and are matched separately.
func NewKeyMap(b Bindings) KeyMap {
	single := func(cmd Command) key.Binding {
		var keys []string
		for _, seq := range b[cmd] {
			if !strings.Contains(seq, " ") && len([]rune(seq)) >= 1 && seq != "gg" {
				keys = append(keys, seq)
			}
		}
		return key.NewBinding(key.WithKeys(keys...))
	}

	km := KeyMap{
		Next:           single(CmdNext),
		Previous:       single(CmdPrevious),
		LastSlide:      single(CmdLastSlide),
		ToggleIndex:    single(CmdToggleSlideIndex),
		ToggleBindings: single(CmdToggleKeyBindingsConfig),
		RunTrigger:     single(CmdRenderAsyncOperations),
		HardReload:     single(CmdHardReload),
		Exit:           single(CmdExit),
		CloseModal:     single(CmdCloseModal),
	}
	km.bindings = []binding{
		{CmdNext, km.Next},
		{CmdPrevious, km.Previous},
		{CmdLastSlide, km.LastSlide},
		{CmdToggleSlideIndex, km.ToggleIndex},
		{CmdToggleKeyBindingsConfig, km.ToggleBindings},
		{CmdRenderAsyncOperations, km.RunTrigger},
		{CmdHardReload, km.HardReload},
		{CmdExit, km.Exit},
		{CmdCloseModal, km.CloseModal},
	}
	return km
}

// Dispatch resolves msg against every single-keystroke binding in order,
// returning the first match.
func (km KeyMap) Dispatch(msg tea.KeyMsg) (Command, bool) {
	for _, b := range km.bindings {
		if key.Matches(msg, b.key) {
			return b.cmd, true
		}
	}
	return CmdNone, false
}

// Bindings maps a Command to the ordered matcher sequences that trigger
// it, per spec.md §6's key binding grammar: literal keys, tagged keys
// (<Left>, <c-X>, ...), and sequences of more than one key (e.g. "gg").
// bubbletea's own KeyMsg.String() already renders tokens in this exact
// vocabulary ("left", "ctrl+r", "?", single runes), so tokens double as
// both the config surface and the runtime match key.
type Bindings map[Command][]string

// DefaultBindings matches the listing internal/builder's key-bindings
// modal shows the viewer.
func DefaultBindings() Bindings {
	return Bindings{
		CmdNext:                    {"right", " ", "pgdown", "j"},
		CmdPrevious:                {"left", "pgup", "k"},
		CmdFirstSlide:              {"gg"},
		CmdLastSlide:               {"G"},
		CmdToggleSlideIndex:        {"tab"},
		CmdToggleKeyBindingsConfig: {"?"},
		CmdRenderAsyncOperations:   {"e"},
		CmdHardReload:              {"ctrl+r"},
		CmdExit:                    {"q", "ctrl+c"},
		CmdCloseModal:              {"esc"},
	}
}

// Conflict is one pair of bindings that violate spec.md §6's "no two
// registered bindings conflict (prefix or identical)" invariant.
type Conflict struct {
	A, B      Command
	SequenceA string
	SequenceB string
}

func (c Conflict) Error() string {
	return fmt.Sprintf("presenter: binding %q (command %d) conflicts with %q (command %d)", c.SequenceA, c.A, c.SequenceB, c.B)
}

// matchResult tells a caller accumulating a key buffer whether to commit,
// keep waiting for more keys, or give up.
type matchResult int

const (
	matchNone matchResult = iota
	matchPrefix
	matchExact
)

// Match resolves a buffered sequence of key tokens (space-free, as built by
// the model's pendingSeq) against every multi-key sequence in b — in
// practice just "gg", since every other default is a single keystroke
// handled by KeyMap/key.Matches instead. matchExact takes priority over a
// simultaneous matchPrefix from a different, longer-but-unrelated entry.
func (b Bindings) Match(buffer string) (Command, matchResult) {
	best := matchNone
	var bestCmd Command
	for cmd, seqs := range b {
		for _, seq := range seqs {
			if !strings.Contains(seq, " ") && len([]rune(seq)) <= 1 {
				continue // single-key bindings are KeyMap's job
			}
			if seq == buffer {
				return cmd, matchExact
			}
			if strings.HasPrefix(seq, buffer) && best == matchNone {
				best, bestCmd = matchPrefix, cmd
			}
		}
	}
	return bestCmd, best
}

// Conflicts reports every pair of sequences across different commands
// where one is a strict prefix of the other, or they're identical.
func (b Bindings) Conflicts() []Conflict {
	type entry struct {
		cmd Command
		seq string
	}
	var all []entry
	for cmd, seqs := range b {
		for _, s := range seqs {
			all = append(all, entry{cmd, s})
		}
	}
	var out []Conflict
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			a, bb := all[i], all[j]
			if a.cmd == bb.cmd {
				continue
			}
			if a.seq == bb.seq || strings.HasPrefix(a.seq, bb.seq) || strings.HasPrefix(bb.seq, a.seq) {
				out = append(out, Conflict{A: a.cmd, B: bb.cmd, SequenceA: a.seq, SequenceB: bb.seq})
			}
		}
	}
	return out
}
