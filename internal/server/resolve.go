package server

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

// contentRoot is one directory of web content. Its name is the request path
// segment that may address it directly.
type contentRoot struct {
	name string
	fsys fs.FS
}

// Resolver picks files from an ordered list of content directories. Lookups
// take the base name of the request path and the first directory holding
// the file wins, so application content can shadow the built-in library,
// which is always the final root.
type Resolver struct {
	roots []contentRoot
}

// NewResolver builds a resolver over the given directories, in order, with
// the library file system appended as the fallback root.
func NewResolver(directories []string, library fs.FS) (*Resolver, error) {
	resolver := &Resolver{}
	for _, directory := range directories {
		info, err := os.Stat(directory)
		if err != nil {
			return nil, fmt.Errorf("content directory %q: %w", directory, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("content path %q isn't a directory", directory)
		}
		resolver.roots = append(resolver.roots, contentRoot{
			name: filepath.Base(directory),
			fsys: os.DirFS(directory),
		})
	}
	resolver.roots = append(resolver.roots, contentRoot{name: "library", fsys: library})
	return resolver, nil
}

// Allowed reports whether a request path may be served at all: root-level
// resources are, and so are paths whose first segment names a content root.
// Anything else is refused before resolution is even attempted.
func (resolver *Resolver) Allowed(requestPath string) bool {
	trimmed := strings.TrimPrefix(path.Clean("/"+requestPath), "/")
	segment, _, nested := strings.Cut(trimmed, "/")
	if !nested {
		return true
	}
	for _, root := range resolver.roots {
		if root.name == segment {
			return true
		}
	}
	return false
}

// Resolve returns the file system and name serving a request path. The base
// name of the path is what gets looked up, with the empty name meaning
// index.html; the request may name a file in one directory that is actually
// in another.
func (resolver *Resolver) Resolve(requestPath string) (fs.FS, string, error) {
	name := path.Base(path.Clean("/" + requestPath))
	if name == "/" || name == "." {
		name = "index.html"
	}
	for _, root := range resolver.roots {
		info, err := fs.Stat(root.fsys, name)
		if err == nil && info.Mode().IsRegular() {
			return root.fsys, name, nil
		}
	}
	return nil, "", fmt.Errorf("file %q not found", name)
}

// Pages lists the servable HTML files with an initial capital letter, the
// convention the demo pages follow. Used for the startup message.
func (resolver *Resolver) Pages() []string {
	seen := map[string]bool{}
	var pages []string
	for _, root := range resolver.roots {
		matches, err := fs.Glob(root.fsys, "*.html")
		if err != nil {
			continue
		}
		for _, match := range matches {
			if seen[match] || !unicode.IsUpper([]rune(match)[0]) {
				continue
			}
			seen[match] = true
			pages = append(pages, match)
		}
	}
	sort.Strings(pages)
	return pages
}
