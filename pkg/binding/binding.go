/*
Package binding attaches an autocomplete engine to a host text input.

Keyups are debounced before they reach the engine. Navigation, selection and
dismissal keys are handled immediately and only while the result panel is
shown; KeyDown and ClickAway report whether the host must prevent the key's
default action.
*/
package binding

import (
	"sync"
	"time"

	"github.com/bastiangx/mentionserve/pkg/autocomplete"
	"github.com/charmbracelet/log"
)

// Input is the host text field.
type Input interface {
	Value() string
	// Cursor returns the selection end, or a negative value when unknown.
	Cursor() int
	SetValue(value string)
	Focus()
	// NotifyInput tells two-way bound state that the value changed programmatically.
	NotifyInput(value string)
}

// Engine is the subset of *autocomplete.Engine the binding drives.
type Engine interface {
	HandleInput(content string, cursor int)
	ArrowUp()
	ArrowDown()
	Select()
	Close()
	Subscribe(fn func(autocomplete.Event)) func()
}

// Key is a key the binding reacts to on keydown.
type Key int

const (
	KeyOther Key = iota
	KeyArrowUp
	KeyArrowDown
	KeyEnter
	KeyTab
	KeyEscape
)

var keyNames = map[string]Key{
	"ArrowUp":   KeyArrowUp,
	"ArrowDown": KeyArrowDown,
	"Enter":     KeyEnter,
	"Tab":       KeyTab,
	"Escape":    KeyEscape,
}

func (k Key) String() string {
	for name, v := range keyNames {
		if v == k {
			return name
		}
	}
	return "Other"
}

// ParseKey maps a DOM style key name to a Key.
func ParseKey(name string) Key {
	if k, ok := keyNames[name]; ok {
		return k
	}
	return KeyOther
}

// Binding wires one Input to one Engine.
type Binding struct {
	engine   Engine
	input    Input
	debounce *Debouncer

	mu          sync.Mutex
	shown       bool
	unsubscribe func()
}

// New binds input to engine with the given keyup debounce delay.
func New(engine Engine, input Input, delay time.Duration) *Binding {
	return NewWithClock(engine, input, delay, nil)
}

// NewWithClock is New with an explicit clock for the debouncer.
func NewWithClock(engine Engine, input Input, delay time.Duration, clock Clock) *Binding {
	b := &Binding{
		engine:   engine,
		input:    input,
		debounce: NewDebouncer(delay, clock),
	}
	b.unsubscribe = engine.Subscribe(b.onEvent)
	return b
}

func (b *Binding) onEvent(ev autocomplete.Event) {
	switch ev := ev.(type) {
	case autocomplete.PanelShown:
		b.setShown(true)
	case autocomplete.PanelClosed:
		b.setShown(false)
	case autocomplete.Selected:
		b.input.Focus()
		b.input.SetValue(ev.NewValue)
		b.input.NotifyInput(ev.NewValue)
	}
}

func (b *Binding) setShown(shown bool) {
	b.mu.Lock()
	b.shown = shown
	b.mu.Unlock()
}

// PanelShown reports the visibility last announced by the engine.
func (b *Binding) PanelShown() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shown
}

// KeyUp schedules the engine to process the field content once typing pauses.
// Content and cursor are read when the delay expires.
func (b *Binding) KeyUp() {
	b.debounce.Trigger(func() {
		b.engine.HandleInput(b.input.Value(), b.input.Cursor())
	})
}

// FlushKeyUp processes a pending keyup right away.
func (b *Binding) FlushKeyUp() {
	b.debounce.Flush()
}

// KeyDown handles navigation, selection and dismissal keys without debouncing.
// It returns true when the key was consumed and its default action must be prevented.
func (b *Binding) KeyDown(key Key) bool {
	if key == KeyOther || !b.PanelShown() {
		return false
	}

	switch key {
	case KeyArrowUp:
		b.engine.ArrowUp()
	case KeyArrowDown:
		b.engine.ArrowDown()
	case KeyEnter, KeyTab:
		// a keyup still waiting would otherwise reopen the panel on the old text
		b.debounce.Cancel()
		b.engine.Select()
	case KeyEscape:
		b.debounce.Cancel()
		b.engine.Close()
	}
	log.Debug("keydown consumed", "key", key)
	return true
}

// ClickAway closes the panel when the user clicks outside of it.
func (b *Binding) ClickAway() bool {
	return b.KeyDown(KeyEscape)
}

// Release detaches the binding from the engine.
func (b *Binding) Release() {
	b.debounce.Cancel()
	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
}
