package checksum

import (
	"context"
	"strings"
	"testing"
)

// TestSHA256Calculation tests digest computation against a known vector
func TestSHA256Calculation(t *testing.T) {
	calc := NewDefaultCalculator()
	ctx := context.Background()

	// Test vector: "hello world", uppercase hex
	input := strings.NewReader("hello world")
	expected := "B94D27B9934D3E08A52E52D7DA7DABFAC484EFE37A5380EE9088F7ACE2EFCDE9"

	result, err := calc.Calculate(ctx, input)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if result != expected {
		t.Errorf("SHA256 mismatch: got %s, want %s", result, expected)
	}
}

// TestEmptyInput tests the digest of empty content
func TestEmptyInput(t *testing.T) {
	calc := NewDefaultCalculator()
	ctx := context.Background()

	input := strings.NewReader("")
	expected := "E3B0C44298FC1C149AFBF4C8996FB92427AE41E4649B934CA495991B7852B855"

	result, err := calc.Calculate(ctx, input)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if result != expected {
		t.Errorf("empty input mismatch: got %s, want %s", result, expected)
	}
}

// TestDeterminism tests that the same content always yields the same digest
// and differing content yields differing digests
func TestDeterminism(t *testing.T) {
	calc := NewDefaultCalculator()
	ctx := context.Background()

	content := strings.Repeat("abc123", 4096)

	first, err := calc.Calculate(ctx, strings.NewReader(content))
	if err != nil {
		t.Fatalf("first Calculate failed: %v", err)
	}
	second, err := calc.Calculate(ctx, strings.NewReader(content))
	if err != nil {
		t.Fatalf("second Calculate failed: %v", err)
	}
	if first != second {
		t.Errorf("digests should be identical: %s != %s", first, second)
	}

	other, err := calc.Calculate(ctx, strings.NewReader(content+"x"))
	if err != nil {
		t.Fatalf("third Calculate failed: %v", err)
	}
	if other == first {
		t.Errorf("differing content should yield differing digests")
	}
}

// TestChunkBoundary tests that content spanning multiple read chunks hashes
// the same as a single-chunk read
func TestChunkBoundary(t *testing.T) {
	ctx := context.Background()
	content := strings.Repeat("z", 5000) // crosses several 1KB chunks

	small := NewCalculator(Options{BufferSize: 7})
	large := NewCalculator(Options{BufferSize: 64 * 1024})

	a, err := small.Calculate(ctx, strings.NewReader(content))
	if err != nil {
		t.Fatalf("small buffer Calculate failed: %v", err)
	}
	b, err := large.Calculate(ctx, strings.NewReader(content))
	if err != nil {
		t.Fatalf("large buffer Calculate failed: %v", err)
	}
	if a != b {
		t.Errorf("digest should not depend on buffer size: %s != %s", a, b)
	}
}

// TestContextCancellation tests that calculation respects context cancellation
func TestContextCancellation(t *testing.T) {
	calc := NewDefaultCalculator()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	_, err := calc.Calculate(ctx, strings.NewReader("some data"))
	if err == nil {
		t.Fatal("Expected context cancellation error, got nil")
	}
	if err != context.Canceled {
		t.Errorf("Expected context.Canceled, got: %v", err)
	}
}
