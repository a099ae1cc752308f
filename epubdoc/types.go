// Package epubdoc parses EPUB archives into the pipeline's document model:
// chapters with parsed markup trees, the shared stylesheet, embedded images,
// the navigation anchor list and the cross-reference map.
package epubdoc

// pkg represents the parsed OPF package document.
type pkg struct {
	Metadata Metadata
	Manifest map[string]ManifestItem // keyed by ID
	Spine    []string                // manifest IDs in reading order
	Version  string                  // "2.0" or "3.0"
}

// Metadata contains the Dublin Core fields the pipeline consumes.
type Metadata struct {
	Title      string
	Creator    []string
	Language   string
	Identifier string
}

// ManifestItem represents one file in the EPUB manifest.
type ManifestItem struct {
	ID         string
	Href       string
	MediaType  string
	Properties []string // "nav", "cover-image", ...
}

// NavPoint is one table-of-contents anchor: a title addressing a position
// (file plus optional fragment) in the book. Several NavPoints may address
// the same file; the segmenter then splits that file into several chapters.
type NavPoint struct {
	Title    string
	File     string // archive path, resolved against the OPF directory
	Fragment string // anchor id within File; "" means the file start
}
