/*
Package autocomplete implements the interaction engine behind mention and tag
suggestions inside a text field.

An Engine is bound to exactly one text input and identified by a component id.
It tokenizes the field around the cursor, matches the token under the cursor
against the configured types, asks a Searcher for candidates and keeps the
keyboard driven selection state of the result panel.

# Flow

	engine := autocomplete.New("question-body", matcher, index)
	unsubscribe := engine.Subscribe(func(ev autocomplete.Event) { ... })
	defer unsubscribe()

	engine.HandleInput("hey @ali", 8) // SearchParamsSet, PanelShown, ResultsUpdated
	engine.ArrowDown()                // SelectionChanged
	engine.Select()                   // Selected{NewValue: "hey @alice "}, PanelClosed

Tokens are whitespace delimited and their ranges are rune offsets into the
field content. A token is active when Start < cursor <= End.

# Events

Everything the engine wants the host to know is published on the instance's
own emitter. Events are typed structs and carry the component id, so two
engines never share a channel.

	SearchParamsSet   a search was issued for (types, word)
	PanelShown        the result panel became visible
	PanelClosed       the result panel was hidden
	ResultsUpdated    results for the current search arrived
	SearchFailed      the search for the current token failed
	SelectionChanged  the highlighted result moved
	Selected          the new full field value after a replacement

# Stale responses

Every search is tagged with a generation. Issuing a new search or closing the
panel cancels the previous request context, and responses for anything other
than the current generation of an open panel are dropped. A late response can
never reopen a panel the user has closed.

Events leave the engine after its lock is released. A result event that
passed the open check can therefore reach subscribers after a PanelClosed
published by a concurrent Close on another goroutine. Hosts that draw the
panel from ResultsUpdated or SearchFailed should check Visible first:

	case autocomplete.ResultsUpdated:
		if engine.Visible() {
			draw(ev.Results)
		}
*/
package autocomplete
