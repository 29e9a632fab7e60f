package render

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// Registry resolves font aliases like "bold18" to drawable faces, memoized
// per alias for the life of the process. The resolve chain never fails: a
// missing glyph must never abort a render pass, so the worst case is the
// built-in bitmap face rather than an error.
//
// TTF naming convention in the fonts directory:
//
//	bold18.ttf    exact alias match
//	bold.ttf      all "bold" aliases
//	regular.ttf   all "regular" aliases
//
// The cache is append-only. A missed-cache race just causes a redundant
// resolve, so a plain mutex around the map is all the coordination needed.
type Registry struct {
	dir string

	mu    sync.Mutex
	cache map[string]font.Face
}

func NewRegistry(dir string) *Registry {
	return &Registry{
		dir:   dir,
		cache: make(map[string]font.Face),
	}
}

// Resolve returns the face for alias. Never fails.
func (r *Registry) Resolve(alias string) font.Face {
	r.mu.Lock()
	if face, ok := r.cache[alias]; ok {
		r.mu.Unlock()
		return face
	}
	r.mu.Unlock()

	face := r.load(alias)

	r.mu.Lock()
	r.cache[alias] = face
	r.mu.Unlock()
	return face
}

func (r *Registry) load(alias string) font.Face {
	style, size := parseAlias(alias)

	// 1. Exact match: bold18.ttf
	if face := r.loadTTF(filepath.Join(r.dir, alias+".ttf"), size); face != nil {
		return face
	}

	// 2. Style match: bold.ttf or regular.ttf
	if face := r.loadTTF(filepath.Join(r.dir, style+".ttf"), size); face != nil {
		return face
	}

	// 3. Any .ttf in the directory
	matches, _ := filepath.Glob(filepath.Join(r.dir, "*.ttf"))
	for _, m := range matches {
		if face := r.loadTTF(m, size); face != nil {
			return face
		}
	}

	// 4. Built-in bitmap fallback, always works
	return basicfont.Face7x13
}

func (r *Registry) loadTTF(path string, size int) font.Face {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil
	}
	return face
}

// parseAlias splits an alias like "bold18" into its style and pixel size.
// Anything unparseable resolves to regular at 14px.
func parseAlias(alias string) (string, int) {
	i := strings.IndexFunc(alias, unicode.IsDigit)
	if i <= 0 {
		return "regular", 14
	}
	style := alias[:i]
	size, err := strconv.Atoi(alias[i:])
	if err != nil || size <= 0 {
		return style, 14
	}
	return style, size
}
