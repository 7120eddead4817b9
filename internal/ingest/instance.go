package ingest

import (
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// HashInstance returns the content hash producers advertise in their offer.
func HashInstance(r io.Reader) (uint64, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return 0, fmt.Errorf("hash instance: %w", err)
	}
	return h.Sum64(), nil
}

func HashInstanceFile(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open instance: %w", err)
	}
	defer f.Close()
	return HashInstance(f)
}
