package json

import (
	"strings"
	"testing"
)

type decision struct {
	Target  string `json:"target"`
	Context string `json:"context"`
}

func TestDecodePureJSON(t *testing.T) {
	got, err := Decode[decision](`{"target": "catalog", "context": "find albums"}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Target != "catalog" || got.Context != "find albums" {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestDecodeMarkdownFenced(t *testing.T) {
	cases := []string{
		"```json\n{\"target\": \"invoice\"}\n```",
		"```\n{\"target\": \"invoice\"}\n```",
	}
	for _, in := range cases {
		got, err := Decode[decision](in)
		if err != nil {
			t.Fatalf("decode %q: %v", in, err)
		}
		if got.Target != "invoice" {
			t.Errorf("decode %q: got %+v", in, got)
		}
	}
}

func TestDecodeEmbeddedInProse(t *testing.T) {
	in := `Sure, here is the decision you asked for: {"target": "catalog", "context": "x"} hope that helps!`
	got, err := Decode[decision](in)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Target != "catalog" {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestDecodeNoJSON(t *testing.T) {
	_, err := Decode[decision]("I could not make a decision, sorry.")
	if err == nil {
		t.Fatal("expected error for response without JSON")
	}
}

func TestErrorPreviewTruncated(t *testing.T) {
	_, err := Decode[decision](strings.Repeat("x", 500))
	if err == nil {
		t.Fatal("expected error")
	}
	if len(err.Error()) > 200 {
		t.Errorf("error preview not truncated: %d chars", len(err.Error()))
	}
}

func TestDecodeInto(t *testing.T) {
	var got map[string]any
	if err := DecodeInto(`{"a": 1}`, &got); err != nil {
		t.Fatalf("decode into: %v", err)
	}
	if got["a"] != float64(1) {
		t.Errorf("unexpected map: %v", got)
	}
}
