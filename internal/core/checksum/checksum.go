package checksum

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
)

// Options configures the checksum calculator
type Options struct {
	// BufferSize: size of buffer for streaming reads
	// Default: 1KB
	BufferSize int
}

// DefaultOptions returns the recommended default options
func DefaultOptions() Options {
	return Options{
		BufferSize: 1024, // 1KB
	}
}

// Calculator computes file content digests
type Calculator interface {
	// Calculate computes the SHA-256 digest of everything readable from
	// reader and returns it as uppercase hex
	Calculate(ctx context.Context, reader io.Reader) (string, error)
}

// DefaultCalculator implements Calculator with streaming support
type DefaultCalculator struct {
	opts Options
}

// NewCalculator creates a new calculator with the given options
func NewCalculator(opts Options) *DefaultCalculator {
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultOptions().BufferSize
	}
	return &DefaultCalculator{opts: opts}
}

// NewDefaultCalculator creates a calculator with default options
func NewDefaultCalculator() *DefaultCalculator {
	return NewCalculator(DefaultOptions())
}

// Calculate implements the Calculator interface.
// Digest equality is the planner's sole basis for "content unchanged", so
// the whole stream is always hashed; there is no size cap or partial mode.
func (c *DefaultCalculator) Calculate(ctx context.Context, reader io.Reader) (string, error) {
	h := sha256.New()
	buffer := make([]byte, c.opts.BufferSize)

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		n, err := reader.Read(buffer)
		if n > 0 {
			if _, hashErr := h.Write(buffer[:n]); hashErr != nil {
				return "", fmt.Errorf("hash write error: %w", hashErr)
			}
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read error: %w", err)
		}
	}

	return fmt.Sprintf("%X", h.Sum(nil)), nil
}
