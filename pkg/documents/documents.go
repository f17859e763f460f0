// Package documents loads a folder of reference documents into an ordered
// corpus, renders it into the text blob embedded in the system prompt, and
// fingerprints it so unchanged corpora can reuse a cached prompt.
//
// The corpus is read once at session construction; the optional Watcher only
// reports that the folder has drifted from the prompt a running session was
// built with. It never mutates a live session.
package documents

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Document is one file of the reference corpus.
type Document struct {
	// RelPath is the path relative to the corpus root, with forward
	// slashes, so digests agree across machines.
	RelPath string
	Content string
	Size    int64
}

// Corpus is the ordered set of loaded documents. The loader sorts it by
// RelPath, which makes Render and Digest deterministic.
type Corpus []Document

// Render concatenates the corpus into a single text blob, each document
// preceded by a header naming its relative path. The session treats the
// result as opaque text.
func (c Corpus) Render() string {
	var b strings.Builder
	for i, doc := range c {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "--- %s ---\n", doc.RelPath)
		b.WriteString(doc.Content)
	}
	return b.String()
}

// Digest returns a stable xxhash fingerprint of the corpus, derived from
// every document's relative path and content. Two corpora with the same
// files and bytes produce the same digest regardless of where they live on
// disk.
func (c Corpus) Digest() string {
	h := xxhash.New()
	for _, doc := range c {
		_, _ = h.WriteString(doc.RelPath)
		_, _ = h.Write([]byte{0})
		_, _ = h.WriteString(doc.Content)
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// TotalSize returns the summed size in bytes of all loaded documents.
func (c Corpus) TotalSize() int64 {
	var total int64
	for _, doc := range c {
		total += doc.Size
	}
	return total
}
