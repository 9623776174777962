package article

import (
	"strings"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	m := New("title", "content")
	m.ResponseRaw = "raw text"
	m.ResponseStruct = &StructuredAnalysis{
		StockCode: "AAPL",
		StockName: "Apple",
		Analysis: HorizonAnalysis{
			ShortTerm: HorizonView{Score: "+35", Driver: "earnings beat", Risk: "guidance"},
		},
		Alerts:     []string{"watch guidance"},
		Conclusion: "bullish near-term",
	}

	body, err := m.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	decoded, err := Decode(body)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if decoded.MessageID != m.MessageID {
		t.Errorf("MessageID = %q, want %q", decoded.MessageID, m.MessageID)
	}
	if decoded.Title != m.Title || decoded.Content != m.Content {
		t.Errorf("Title/Content mismatch after round trip")
	}
	if decoded.ResponseStruct == nil || decoded.ResponseStruct.StockCode != "AAPL" {
		t.Errorf("ResponseStruct not preserved: %+v", decoded.ResponseStruct)
	}
}

func TestDecodeUnknownFieldsIgnored(t *testing.T) {
	body := []byte(`{"article_id":"x","title":"t","content":"c","extra_field":"ignored"}`)
	m, err := Decode(body)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if m.MessageID != "x" {
		t.Errorf("MessageID = %q, want %q", m.MessageID, "x")
	}
}

func TestDecodeInvalidJSON(t *testing.T) {
	_, err := Decode([]byte("not json"))
	if err == nil {
		t.Fatal("expected decode error for invalid JSON")
	}
}

func TestMessageIDSerialisedAsArticleID(t *testing.T) {
	m := New("t", "c")
	body, err := m.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !strings.Contains(string(body), `"article_id"`) {
		t.Errorf("expected wire form to key the id as article_id, got %s", body)
	}
}
