// Package knowledge builds the static knowledge base injected into brand-new
// chat sessions. Text extraction is capability-gated: the registry maps file
// extensions to extractors, and an extension nobody registered is a normal
// "skip", not an error. The bootstrap decides which extractors exist.
package knowledge

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Extractor turns one file into plain text.
type Extractor interface {
	Extract(path string) (string, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(path string) (string, error)

func (f ExtractorFunc) Extract(path string) (string, error) {
	return f(path)
}

// Registry maps lower-case file extensions (with leading dot) to extractors.
// Populated once at startup; not safe for concurrent mutation afterwards.
type Registry struct {
	byExt map[string]Extractor
}

// NewRegistry returns a registry with the always-available plain-text
// extractors (.txt, .md) registered.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]Extractor)}
	r.Register(".txt", ExtractorFunc(extractPlainText))
	r.Register(".md", ExtractorFunc(extractPlainText))
	return r
}

// NewEmptyRegistry returns a registry with nothing registered. Test use.
func NewEmptyRegistry() *Registry {
	return &Registry{byExt: make(map[string]Extractor)}
}

func (r *Registry) Register(ext string, e Extractor) {
	r.byExt[strings.ToLower(ext)] = e
}

// Lookup returns the extractor for a filename's extension, if any.
func (r *Registry) Lookup(filename string) (Extractor, bool) {
	e, ok := r.byExt[strings.ToLower(filepath.Ext(filename))]
	return e, ok
}

// Supported lists registered extensions in sorted order.
func (r *Registry) Supported() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ExtractFile extracts text from a single file through the registry. An
// unregistered extension is an error here (unlike the directory scan, the
// caller asked for this specific file).
func ExtractFile(path string, reg *Registry) (string, error) {
	e, ok := reg.Lookup(path)
	if !ok {
		return "", fmt.Errorf("unsupported file type %q (supported: %s)",
			filepath.Ext(path), strings.Join(reg.Supported(), ", "))
	}
	return e.Extract(path)
}
