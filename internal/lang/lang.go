// Package lang defines language profiles for the chunker.
// A profile is data, not code: an ordered list of definition-signature
// patterns plus the extensions it claims. Adding a language means
// registering a profile, no new branching anywhere else.
package lang

import (
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// Profile describes how one language's definition lines look.
type Profile struct {
	// Name is the language tag stored on index entries (e.g. "go").
	Name string

	// Extensions are the file extensions this profile claims, with dot.
	Extensions []string

	// Signatures are tried in order against each line. The first submatch,
	// when present, is the definition's identifier.
	Signatures []*regexp.Regexp
}

// MatchSignature reports whether line opens a definition. The returned
// identifier is empty when the matching pattern has no capture group (the
// caller labels the chunk from the line text instead).
func (p *Profile) MatchSignature(line string) (identifier string, ok bool) {
	for _, re := range p.Signatures {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if len(m) > 1 && m[1] != "" {
			return m[1], true
		}
		return "", true
	}
	return "", false
}

// Registry maps file extensions to language profiles.
type Registry struct {
	mu        sync.RWMutex
	profiles  map[string]*Profile
	extToLang map[string]string
}

// NewRegistry creates a registry pre-loaded with the default profiles.
func NewRegistry() *Registry {
	r := &Registry{
		profiles:  make(map[string]*Profile),
		extToLang: make(map[string]string),
	}
	for _, p := range defaultProfiles() {
		r.Register(p)
	}
	return r
}

// Register adds or replaces a profile and claims its extensions.
func (r *Registry) Register(p *Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.profiles[p.Name] = p
	for _, ext := range p.Extensions {
		r.extToLang[strings.ToLower(ext)] = p.Name
	}
}

// ByExtension returns the profile claiming the given extension.
func (r *Registry) ByExtension(ext string) (*Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.extToLang[strings.ToLower(ext)]
	if !ok {
		return nil, false
	}
	p, ok := r.profiles[name]
	return p, ok
}

// ByName returns the profile with the given language name.
func (r *Registry) ByName(name string) (*Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[name]
	return p, ok
}

// Detect returns the profile for a file path, keyed by its extension.
func (r *Registry) Detect(path string) (*Profile, bool) {
	return r.ByExtension(filepath.Ext(path))
}

// Supported reports whether the path's extension belongs to any profile.
func (r *Registry) Supported(path string) bool {
	_, ok := r.Detect(path)
	return ok
}

// SupportedExtensions returns all claimed extensions.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.extToLang))
	for ext := range r.extToLang {
		exts = append(exts, ext)
	}
	return exts
}
