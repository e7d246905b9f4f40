package cbz

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/banux/nxt-albums/internal/album"
)

// createArchive writes a zip file to path with one member per name.
// Each member's content is its own name; names ending in "/" become
// directory entries.
func createArchive(t *testing.T, path string, names ...string) {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range names {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %q: %v", name, err)
		}
		if name[len(name)-1] == '/' {
			continue
		}
		if _, err := f.Write([]byte(name)); err != nil {
			t.Fatalf("write zip entry %q: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write archive: %v", err)
	}
}

func TestOpen_FiltersAndSorts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Bar.cbz")
	createArchive(t, path, "p2.jpg", "ComicInfo.xml", "extras/", "p1.jpg", "extras/p0.png")

	src, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer src.Close()

	want := []string{"extras/p0.png", "p1.jpg", "p2.jpg"}
	if src.Count() != len(want) {
		t.Fatalf("Count: got %d, want %d", src.Count(), len(want))
	}
	for i, p := range src.Pages() {
		if p.Name != want[i] {
			t.Errorf("page %d: got %q, want %q", i, p.Name, want[i])
		}
	}
}

func TestReadPage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Bar.cbz")
	createArchive(t, path, "p2.jpg", "p1.jpg")

	src, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer src.Close()

	data, mimeType, err := src.ReadPage(1)
	if err != nil {
		t.Fatalf("ReadPage(1): %v", err)
	}
	if string(data) != "p2.jpg" {
		t.Errorf("data: got %q, want p2.jpg", data)
	}
	if mimeType != "image/jpeg" {
		t.Errorf("mime: got %q, want image/jpeg", mimeType)
	}

	if _, _, err := src.ReadPage(2); !errors.Is(err, album.ErrPageRange) {
		t.Errorf("ReadPage(2): got %v, want ErrPageRange", err)
	}
}

func TestOpen_NotAnArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.cbz")
	if err := os.WriteFile(path, []byte("not a zip"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Fatal("expected error for invalid archive")
	}
	if HasImages(path) {
		t.Error("HasImages must be false for an invalid archive")
	}
}

func TestHasImages(t *testing.T) {
	dir := t.TempDir()
	withImages := filepath.Join(dir, "a.cbz")
	createArchive(t, withImages, "info.txt", "001.png")
	if !HasImages(withImages) {
		t.Error("expected HasImages true")
	}

	withoutImages := filepath.Join(dir, "b.cbz")
	createArchive(t, withoutImages, "info.txt", "folder.png/")
	if HasImages(withoutImages) {
		t.Error("expected HasImages false")
	}
}

func TestConcurrentIndependentOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Bar.cbz")
	createArchive(t, path, "p1.jpg", "p2.jpg", "p3.jpg")

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for n := 0; n < 16; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			src, err := Open(path)
			if err != nil {
				errs <- err
				return
			}
			defer src.Close()
			i := n % src.Count()
			data, _, err := src.ReadPage(i)
			if err != nil {
				errs <- err
				return
			}
			if string(data) != src.Pages()[i].Name {
				errs <- errors.New("page content mismatch: " + string(data))
			}
		}(n)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
