package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SavePath picks a non-colliding path for filename inside dir by appending
// " (n)" before the extension for n = 1, 2, ... until no file exists there.
func SavePath(dir, filename string) string {
	if filename == "" {
		filename = "download"
	}
	filename = filepath.Base(filename)
	candidate := filepath.Join(dir, filename)
	if !pathExists(candidate) {
		return candidate
	}
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	for n := 1; ; n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
		if !pathExists(candidate) {
			return candidate
		}
	}
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
