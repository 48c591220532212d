package objectkey

import (
	"fmt"
	"mime"
	"path"
	"sort"
	"strings"
)

// Generator defines the interface for media object key generation strategies
type Generator interface {
	// GenerateKey creates the storage key of the media owned by record id of collection
	GenerateKey(collection, id string, metadata *KeyMetadata) string
}

// KeyMetadata contains information that influences key generation
type KeyMetadata struct {
	FileName    string
	ContentType string
}

// MediaGenerator produces one deterministic key per record:
// authors/<id>.png, blogPosts/<id>.jpg
type MediaGenerator struct{}

func NewMediaGenerator() *MediaGenerator {
	return &MediaGenerator{}
}

func (g *MediaGenerator) GenerateKey(collection, id string, metadata *KeyMetadata) string {
	ext := ""
	if metadata != nil {
		ext = Extension(metadata.FileName, metadata.ContentType)
	}
	return fmt.Sprintf("%s/%s%s", sanitizePathComponent(collection), sanitizeFilename(id), ext)
}

// PrefixedGenerator places every key of BaseGenerator under Prefix.
// Useful when several deployments share one bucket.
type PrefixedGenerator struct {
	Prefix        string
	BaseGenerator Generator
}

func NewPrefixedGenerator(prefix string, base Generator) *PrefixedGenerator {
	if base == nil {
		base = NewMediaGenerator()
	}
	return &PrefixedGenerator{
		Prefix:        strings.Trim(prefix, "/"),
		BaseGenerator: base,
	}
}

func (g *PrefixedGenerator) GenerateKey(collection, id string, metadata *KeyMetadata) string {
	baseKey := g.BaseGenerator.GenerateKey(collection, id, metadata)
	if g.Prefix == "" {
		return baseKey
	}
	return fmt.Sprintf("%s/%s", g.Prefix, baseKey)
}

// CustomFuncGenerator allows users to provide their own key generation function
type CustomFuncGenerator struct {
	GenerateFunc func(collection, id string, metadata *KeyMetadata) string
}

func NewCustomFuncGenerator(fn func(collection, id string, metadata *KeyMetadata) string) *CustomFuncGenerator {
	return &CustomFuncGenerator{
		GenerateFunc: fn,
	}
}

func (g *CustomFuncGenerator) GenerateKey(collection, id string, metadata *KeyMetadata) string {
	return g.GenerateFunc(collection, id, metadata)
}

// Extension returns the lower-cased extension of fileName including the dot.
// When fileName has none, an extension registered for contentType is used.
func Extension(fileName, contentType string) string {
	ext := strings.ToLower(path.Ext(sanitizeFilename(fileName)))
	if ext != "" && ext != "." {
		return ext
	}
	if contentType == "" {
		return ""
	}
	exts, err := mime.ExtensionsByType(contentType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	// mime returns extensions in an unspecified order
	sort.Strings(exts)
	for _, preferred := range []string{".jpg", ".png", ".gif", ".webp"} {
		for _, e := range exts {
			if e == preferred {
				return e
			}
		}
	}
	return exts[0]
}

// Helper functions for path sanitization
func sanitizeFilename(filename string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	return replacer.Replace(filename)
}

func sanitizePathComponent(component string) string {
	return strings.Trim(sanitizeFilename(component), ".")
}

// NewDefaultGenerator returns the generator used when none is configured
func NewDefaultGenerator() Generator {
	return NewMediaGenerator()
}
