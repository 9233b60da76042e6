package server

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func testLibrary() fstest.MapFS {
	return fstest.MapFS{
		"captivewebview.js": {Data: []byte("// bridge library")},
		"Main.html":         {Data: []byte("<html>main</html>")},
		"Spinner.html":      {Data: []byte("<html>spinner</html>")},
		"index.html":        {Data: []byte("<html>index</html>")},
	}
}

func testResolver(t *testing.T) (*Resolver, string) {
	t.Helper()
	directory := t.TempDir()
	if err := os.WriteFile(
		filepath.Join(directory, "Main.html"), []byte("<html>app main</html>"), 0o600,
	); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(
		filepath.Join(directory, "style.css"), []byte("body {}"), 0o600,
	); err != nil {
		t.Fatal(err)
	}
	resolver, err := NewResolver([]string{directory}, testLibrary())
	if err != nil {
		t.Fatalf("NewResolver() failed: %v", err)
	}
	return resolver, directory
}

func TestResolveFirstDirectoryWins(t *testing.T) {
	resolver, _ := testResolver(t)

	fsys, name, err := resolver.Resolve("/Main.html")
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		t.Fatal(err)
	}
	// The application copy shadows the library copy.
	if string(data) != "<html>app main</html>" {
		t.Fatalf("content %q: want the application copy", data)
	}
}

func TestResolveFallsBackToLibrary(t *testing.T) {
	resolver, _ := testResolver(t)

	fsys, name, err := resolver.Resolve("/captivewebview.js")
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "// bridge library" {
		t.Fatalf("content %q: want the library copy", data)
	}
}

func TestResolveEmptyMeansIndex(t *testing.T) {
	resolver, _ := testResolver(t)
	_, name, err := resolver.Resolve("/")
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if name != "index.html" {
		t.Fatalf("name %q: want index.html", name)
	}
}

func TestResolveTakesBaseName(t *testing.T) {
	resolver, directory := testResolver(t)
	// A path through one directory finds a file that is in another.
	_, name, err := resolver.Resolve("/" + filepath.Base(directory) + "/Spinner.html")
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if name != "Spinner.html" {
		t.Fatalf("name %q: want Spinner.html", name)
	}
}

func TestResolveMissingFile(t *testing.T) {
	resolver, _ := testResolver(t)
	if _, _, err := resolver.Resolve("/nothing.html"); err == nil {
		t.Fatal("Resolve() of a missing file didn't fail")
	}
}

func TestAllowed(t *testing.T) {
	resolver, directory := testResolver(t)
	tests := []struct {
		path string
		want bool
	}{
		{path: "/", want: true},
		{path: "/Main.html", want: true},
		{path: "/library/captivewebview.js", want: true},
		{path: "/" + filepath.Base(directory) + "/style.css", want: true},
		{path: "/elsewhere/secret.txt", want: false},
	}
	for _, test := range tests {
		if got := resolver.Allowed(test.path); got != test.want {
			t.Fatalf("Allowed(%q) = %v, want %v", test.path, got, test.want)
		}
	}
}

func TestPages(t *testing.T) {
	resolver, _ := testResolver(t)
	pages := resolver.Pages()
	want := []string{"Main.html", "Spinner.html"}
	if len(pages) != len(want) {
		t.Fatalf("pages %v: want %v", pages, want)
	}
	for index, page := range want {
		if pages[index] != page {
			t.Fatalf("pages %v: want %v", pages, want)
		}
	}
}
