// Package cli drives an autocomplete engine from stdin for debugging in real time.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/mentionserve/pkg/autocomplete"
	"github.com/bastiangx/mentionserve/pkg/binding"
	"github.com/charmbracelet/log"
)

// Commands typed on their own line instead of text.
const (
	cmdUp     = ":up"
	cmdDown   = ":down"
	cmdSelect = ":select"
	cmdTab    = ":tab"
	cmdClose  = ":close"
	cmdQuit   = ":quit"
)

var commandKeys = map[string]binding.Key{
	cmdUp:     binding.KeyArrowUp,
	cmdDown:   binding.KeyArrowDown,
	cmdSelect: binding.KeyEnter,
	cmdTab:    binding.KeyTab,
	cmdClose:  binding.KeyEscape,
}

// InputHandler is a line based text field. Every line replaces the field
// content with the cursor at its end; command lines act as keys.
type InputHandler struct {
	engine  *autocomplete.Engine
	binding *binding.Binding
	panel   *Panel
	out     io.Writer

	mu     sync.Mutex
	value  string
	cursor int
}

// LimitedSearcher is an index that takes an explicit result limit.
type LimitedSearcher interface {
	SearchN(ctx context.Context, params autocomplete.SearchParams, limit int) ([]autocomplete.Result, error)
}

// Searcher caps every search at limit results, so the panel shows the whole
// list the engine navigates.
func Searcher(index LimitedSearcher, limit int) autocomplete.Searcher {
	return autocomplete.SearcherFunc(func(ctx context.Context, params autocomplete.SearchParams) ([]autocomplete.Result, error) {
		return index.SearchN(ctx, params, limit)
	})
}

// NewInputHandler binds a fresh field to engine and renders to out.
// A zero delay uses binding.DefaultDelay.
func NewInputHandler(engine *autocomplete.Engine, out io.Writer, highlight bool, delay time.Duration) *InputHandler {
	if delay <= 0 {
		delay = binding.DefaultDelay
	}
	h := &InputHandler{
		engine: engine,
		panel:  NewPanel(highlight),
		out:    out,
	}
	h.binding = binding.New(engine, h, delay)
	return h
}

func (h *InputHandler) Value() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.value
}

func (h *InputHandler) Cursor() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor
}

func (h *InputHandler) SetValue(value string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.value = value
	h.cursor = utf8.RuneCountInString(value)
}

func (h *InputHandler) Focus() {
	log.Debug("field focused")
}

func (h *InputHandler) NotifyInput(value string) {
	fmt.Fprintf(h.out, "%s\n", h.panel.Value(value))
}

// Start reads lines from in until EOF or :quit.
func (h *InputHandler) Start(in io.Reader) error {
	defer h.binding.Release()
	fmt.Fprintln(h.out, "MentionServe CLI")
	fmt.Fprintln(h.out, "type text and press Enter; :up :down :select :tab :close drive the panel, :quit exits")

	reader := bufio.NewReader(in)
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			if line == cmdQuit {
				return nil
			}
			h.HandleLine(line)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// HandleLine processes one line and prints the panel state.
func (h *InputHandler) HandleLine(line string) {
	if key, ok := commandKeys[line]; ok {
		if !h.binding.KeyDown(key) {
			fmt.Fprintln(h.out, h.panel.Note("panel is closed"))
			return
		}
		h.engine.Wait()
		h.render()
		return
	}

	h.SetValue(line)
	h.binding.KeyUp()
	h.binding.FlushKeyUp()
	h.engine.Wait()
	h.render()
}

func (h *InputHandler) render() {
	fmt.Fprint(h.out, h.panel.Render(h.engine))
}
