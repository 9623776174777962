// Package article defines the ArticleMessage wire type that flows through
// both broker queues, and its self-describing JSON encoding.
package article

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrDecode wraps any failure to decode a wire message into an ArticleMessage.
var ErrDecode = errors.New("article: decode failed")

// StructuredAnalysis is the schema inside ResponseStruct, produced by the
// LLM and validated (loosely) by the analyser.
type StructuredAnalysis struct {
	StockCode string          `json:"stock_code"`
	StockName string          `json:"stock_name"`
	Analysis  HorizonAnalysis `json:"analysis"`
	Alerts    []string        `json:"alerts"`
	Conclusion string         `json:"conclusion"`
}

// HorizonAnalysis carries the three time-horizon views an analysis covers.
type HorizonAnalysis struct {
	ShortTerm HorizonView `json:"short_term"`
	MidTerm   HorizonView `json:"mid_term"`
	LongTerm  HorizonView `json:"long_term"`
}

// HorizonView is one time horizon's score/driver/risk triple. Score is kept
// as a string (e.g. "+35", "-12") since that's the wire shape the LLM
// produces and TradePolicy extracts a signed int out of it with a regexp,
// never by parsing it as a number directly.
type HorizonView struct {
	Score  string `json:"score"`
	Driver string `json:"driver"`
	Risk   string `json:"risk"`
}

// Message is the unit flowing through both broker queues.
type Message struct {
	// MessageID is generated at first ingress and preserved thereafter.
	// It is serialised on the wire as "article_id" to match the
	// relational/vector store primary key and the MCP tool contracts.
	MessageID string `json:"article_id"`
	Time      time.Time `json:"time"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`

	// ResponseStruct and ResponseRaw are set by the analyser; both are
	// omitted from the wire until then.
	ResponseStruct *StructuredAnalysis `json:"response_struct,omitempty"`
	ResponseRaw    string              `json:"response_raw,omitempty"`

	// Error carries an analysis failure message; set instead of
	// ResponseStruct/ResponseRaw when the LLM call itself failed.
	Error string `json:"error,omitempty"`
}

// New creates a Message with a fresh MessageID and the current time, the
// way the scraper does on first successful fetch.
func New(title, content string) *Message {
	return &Message{
		MessageID: uuid.NewString(),
		Time:      time.Now(),
		Title:     title,
		Content:   content,
	}
}

// Encode serialises m to its wire form.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode parses the wire form produced by Encode. Unknown fields are
// ignored by encoding/json's default behaviour, matching spec.md's
// "unknown fields ignored" normalisation rule.
func Decode(body []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, errorf(err)
	}
	return &m, nil
}

func errorf(cause error) error {
	return &decodeError{cause: cause}
}

type decodeError struct{ cause error }

func (e *decodeError) Error() string { return ErrDecode.Error() + ": " + e.cause.Error() }
func (e *decodeError) Unwrap() error { return ErrDecode }
