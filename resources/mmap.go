package resources

import (
	"os"

	"github.com/edsrzf/mmap-go"
)

// readMmapped maps path read-only and returns its contents. For
// vocabulary files, which are read once in full and never written,
// mmap avoids a full-file copy into the Go heap.
func readMmapped(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return []byte{}, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, err
	}
	return []byte(m), nil
}
