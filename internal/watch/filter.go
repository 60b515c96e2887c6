package watch

import (
	"path/filepath"
	"strings"
)

// Filter decides whether a changed path is toolchain-relevant. It matches a
// single source-file extension, case-insensitively; everything else is
// ignored regardless of content.
type Filter struct {
	ext string
}

func NewFilter(ext string) Filter {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return Filter{ext: ext}
}

func (f Filter) Matches(path string) bool {
	if f.ext == "" {
		return false
	}
	return strings.ToLower(filepath.Ext(path)) == f.ext
}

func (f Filter) Extension() string {
	return f.ext
}
