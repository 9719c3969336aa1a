// Package testutil provides shared helpers for handler tests and a builder
// for synthetic elevation documents.
package testutil

import (
	"fmt"
	"strings"
	"testing"
)

// GridDocument builds a parseable elevation document with the given
// dimensions. Samples ramp from 100 upward so every cell is valid and
// distinct.
func GridDocument(cols, rows int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@Grid synthetic\nfiller\n%d, %d, 0, 100, 0, 100\n@\n", cols, rows)
	for i := 0; i < cols*rows; i++ {
		fmt.Fprintf(&b, "%d", 100+i)
		if (i+1)%10 == 0 {
			b.WriteByte('\n')
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteByte('\n')
	return b.String()
}

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
