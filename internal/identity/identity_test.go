package identity

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestFingerprint(t *testing.T) {
	if got := Fingerprint("Nike", "AX1", 9); got != "Nike-AX1-9" {
		t.Fatalf("unexpected fingerprint: %s", got)
	}
	if got := Fingerprint("Adidas", "", 10.5); got != "Adidas-NA-10.5" {
		t.Fatalf("missing article should use NA: %s", got)
	}
}

func TestTraceableCodesAreDistinctWithinBatch(t *testing.T) {
	batch := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		code := TraceableCode("Nike", "AX1", 9, batch, i)
		if !strings.HasPrefix(code, "Nike-AX1-9-") {
			t.Fatalf("code %s does not carry the fingerprint prefix", code)
		}
		if seen[code] {
			t.Fatalf("duplicate code minted: %s", code)
		}
		seen[code] = true
	}
}

func TestBaseCodeStripsUnitSuffix(t *testing.T) {
	batch := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	code := TraceableCode("Nike", "AX1", 9, batch, 2)

	if got := BaseCode(code); got != "Nike-AX1-9" {
		t.Fatalf("expected fingerprint, got %s", got)
	}
}

func TestBaseCodeLeavesPlainFingerprintsAlone(t *testing.T) {
	cases := []string{
		"Nike-AX1-9",
		"Nike-AIR-MAX-270-9", // numeric article segments, no timestamp
		fmt.Sprintf("Adidas-NA-%s", FormatSize(10.5)),
	}
	for _, code := range cases {
		if got := BaseCode(code); got != code {
			t.Fatalf("BaseCode(%s) = %s, want unchanged", code, got)
		}
	}
}

func TestFormatSize(t *testing.T) {
	if got := FormatSize(9); got != "9" {
		t.Fatalf("whole size: %s", got)
	}
	if got := FormatSize(9.5); got != "9.5" {
		t.Fatalf("half size: %s", got)
	}
}
