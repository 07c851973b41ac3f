package str

import (
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	if Truncate("  hello  ", 10) != "hello" {
		t.Error("should trim")
	}
	if Truncate("hello", 3) != "hel" {
		t.Error("should bound")
	}
	long := strings.Repeat("é", 600)
	got := Truncate(long, 500)
	if len([]rune(got)) != 500 {
		t.Errorf("got %d runes\n", len([]rune(got)))
	}
}
