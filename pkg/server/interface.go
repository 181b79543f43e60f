/*
Package server implements msgpack IPC for mention and hashtag searches.

The server reads MessagePack requests from stdin and writes MessagePack
responses to stdout, one value after another with no framing. Logs go to
stderr so they never interleave with responses.

# IPC

Once the index is loaded the server announces itself:

	{"status": "ready"}

Search requests name the candidate types to query, the token as typed and an
optional limit. Without types every configured type is searched:

	{"id": "9b1d…", "types": ["mention"], "w": "@ali", "l": 10}

The server responds with merged, ranked results and the time spent in
microseconds:

	{"id": "9b1d…", "s": [{"t": "mention", "l": "alice", "r": "@alice", "sc": 120}], "c": 1, "t": 42}

Failures carry a message and an HTTP style code:

	{"id": "9b1d…", "e": "word exceeds maximum length of 64", "c": 400}

Other actions are selected with "a": "stats" returns index statistics,
"health" answers with a status, and "add" inserts the word "w" for the first
type in "types" with score "sc".

Requests are processed one at a time in arrival order. A token bucket limits
the request rate; rejected requests get code 429.
*/
package server

// Actions understood by the server. An empty action means search.
const (
	ActionSearch = "search"
	ActionStats  = "stats"
	ActionHealth = "health"
	ActionAdd    = "add"
)

// Error codes sent in ErrorResponse.Code.
const (
	CodeBadRequest  = 400
	CodeRateLimited = 429
	CodeInternal    = 500
)

// Request is any client message.
type Request struct {
	ID     string   `msgpack:"id"`
	Action string   `msgpack:"a,omitempty"`
	Types  []string `msgpack:"types,omitempty"`
	Word   string   `msgpack:"w,omitempty"`
	Limit  int      `msgpack:"l,omitempty"`
	Score  int      `msgpack:"sc,omitempty"`
}

// SearchResult is one ranked candidate.
type SearchResult struct {
	Type        string `msgpack:"t"`
	Label       string `msgpack:"l"`
	Replacement string `msgpack:"r"`
	Score       int    `msgpack:"sc"`
}

// SearchResponse answers a search request.
type SearchResponse struct {
	ID        string         `msgpack:"id"`
	Results   []SearchResult `msgpack:"s"`
	Count     int            `msgpack:"c"`
	TimeTaken int64          `msgpack:"t"`
}

// StatusResponse answers ready, health, stats and add.
type StatusResponse struct {
	ID     string         `msgpack:"id,omitempty"`
	Status string         `msgpack:"status"`
	Stats  map[string]int `msgpack:"stats,omitempty"`
}

// ErrorResponse holds basic error information for failed requests
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}

// message is the union of every server response, as decoded by the client.
// "c" is the result count of a search, or the code when "e" is set.
type message struct {
	ID        string         `msgpack:"id"`
	Results   []SearchResult `msgpack:"s"`
	Count     int            `msgpack:"c"`
	TimeTaken int64          `msgpack:"t"`
	Error     string         `msgpack:"e"`
	Status    string         `msgpack:"status"`
	Stats     map[string]int `msgpack:"stats"`
}
