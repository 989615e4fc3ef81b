package utility

import "testing"

func TestMaskToken(t *testing.T) {
	if got := MaskToken(""); got != "" {
		t.Fatalf("empty token should stay empty, got %q", got)
	}
	if got := MaskToken("short"); got != "****" {
		t.Fatalf("short token should be fully masked, got %q", got)
	}
	if got := MaskToken("abcdefghijkl"); got != "abcd****ijkl" {
		t.Fatalf("unexpected mask: %q", got)
	}
}

func TestSummarizeToolResponse(t *testing.T) {
	if got := SummarizeToolResponse(true, "data", ""); got != "data" {
		t.Fatalf("unexpected success summary: %q", got)
	}
	if got := SummarizeToolResponse(false, nil, "boom"); got != "Failed: boom" {
		t.Fatalf("unexpected failure summary: %q", got)
	}
}
