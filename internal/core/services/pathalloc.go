package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathAllocator hands out collision-free destination paths for file-producing
// operations. A name is free only if it neither exists on disk nor was
// handed out earlier in the same run; an allocated path never overwrites an
// existing file.
type PathAllocator struct {
	taken map[string]struct{}
}

// NewPathAllocator creates an allocator for one run.
func NewPathAllocator() *PathAllocator {
	return &PathAllocator{
		taken: make(map[string]struct{}),
	}
}

// Allocate returns basePath when it is free, otherwise the first free name
// in the sequence base(1).ext, base(2).ext, and so on. The sequence is
// deterministic and handles names without an extension.
func (a *PathAllocator) Allocate(basePath string) string {
	if a.free(basePath) {
		a.taken[basePath] = struct{}{}
		return basePath
	}

	ext := filepath.Ext(basePath)
	stem := strings.TrimSuffix(basePath, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s(%d)%s", stem, i, ext)
		if a.free(candidate) {
			a.taken[candidate] = struct{}{}
			return candidate
		}
	}
}

func (a *PathAllocator) free(path string) bool {
	if _, ok := a.taken[path]; ok {
		return false
	}
	_, err := os.Stat(path)
	return err != nil
}
