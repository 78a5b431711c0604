package postengine

import (
	"path/filepath"
	"reflect"
	"testing"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStore(t *testing.T) {
	s := setupTestStore(t)
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
}

func TestSaveAndListImages(t *testing.T) {
	s := setupTestStore(t)

	older := Image{Filename: "a.jpg", OriginalName: "A.png", Width: 800, Height: 600, Size: 1234, UploadedAt: "2024-01-01T10:00:00Z"}
	newer := Image{Filename: "b.jpg", OriginalName: "B.gif", Width: 320, Height: 200, Size: 99, UploadedAt: "2024-02-01T10:00:00Z"}
	for _, img := range []Image{older, newer} {
		if err := s.SaveImage(img); err != nil {
			t.Fatalf("SaveImage(%s) failed: %v", img.Filename, err)
		}
	}

	got, err := s.ListImages()
	if err != nil {
		t.Fatalf("ListImages failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListImages returned %d images, want 2", len(got))
	}
	if !reflect.DeepEqual(got[0], newer) || !reflect.DeepEqual(got[1], older) {
		t.Errorf("ListImages = %+v, want newest first", got)
	}
}

func TestSaveImageReplaces(t *testing.T) {
	s := setupTestStore(t)

	img := Image{Filename: "a.jpg", OriginalName: "A.png", Width: 10, Height: 10, Size: 1, UploadedAt: "2024-01-01T10:00:00Z"}
	if err := s.SaveImage(img); err != nil {
		t.Fatal(err)
	}
	img.Width = 20
	if err := s.SaveImage(img); err != nil {
		t.Fatal(err)
	}

	got, err := s.ListImages()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Width != 20 {
		t.Errorf("ListImages = %+v, want one image with width 20", got)
	}
}

func TestImageExistsAndDelete(t *testing.T) {
	s := setupTestStore(t)

	if ok, err := s.ImageExists("a.jpg"); err != nil || ok {
		t.Fatalf("ImageExists before save = %v, %v; want false, nil", ok, err)
	}
	if err := s.SaveImage(Image{Filename: "a.jpg", UploadedAt: "2024-01-01T10:00:00Z"}); err != nil {
		t.Fatal(err)
	}
	if ok, err := s.ImageExists("a.jpg"); err != nil || !ok {
		t.Fatalf("ImageExists after save = %v, %v; want true, nil", ok, err)
	}
	if err := s.DeleteImage("a.jpg"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.ImageExists("a.jpg"); ok {
		t.Error("image still exists after DeleteImage")
	}
	if err := s.DeleteImage("missing.jpg"); err != nil {
		t.Errorf("DeleteImage(missing) = %v, want nil", err)
	}
}
