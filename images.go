package postengine

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"

	"github.com/silicogen/postengine/content"
)

const (
	maxImageWidth = 800
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
	uploadsSubdir = "uploads"
)

// processImage decodes an image from src, optionally resizes it to maxImageWidth,
// and encodes it as JPEG. Returns metadata and the encoded bytes.
func processImage(src io.Reader, originalName string) (Image, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return Image{}, nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	// Resize if wider than max
	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w = maxImageWidth
		h = newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Image{}, nil, fmt.Errorf("encode jpeg: %w", err)
	}

	filename := slugifyFilename(originalName) + ".jpg"

	return Image{
		Filename:     filename,
		OriginalName: originalName,
		Width:        w,
		Height:       h,
		Size:         buf.Len(),
		UploadedAt:   time.Now().UTC().Format(time.RFC3339),
	}, buf.Bytes(), nil
}

// slugifyFilename converts a filename (without extension) to a URL-safe slug.
func slugifyFilename(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return Slugify(base)
}

// ensureUniqueFilename appends a counter until the name is free both on disk
// and in the Store.
func (a *App) ensureUniqueFilename(img *Image) error {
	dir := filepath.Join(a.staticDir, uploadsSubdir)
	base := strings.TrimSuffix(img.Filename, ".jpg")
	if base == "" {
		base = "image"
	}
	candidate := base + ".jpg"
	counter := 1
	for {
		_, statErr := os.Stat(filepath.Join(dir, candidate))
		taken, err := a.Store.ImageExists(candidate)
		if err != nil {
			return err
		}
		if statErr != nil && !taken {
			break
		}
		counter++
		candidate = fmt.Sprintf("%s-%d.jpg", base, counter)
	}
	img.Filename = candidate
	return nil
}

func (a *App) handleImageUpload(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.String(http.StatusBadRequest, "No image file provided")
	}
	if file.Size > maxUploadSize {
		return c.String(http.StatusBadRequest, "File too large (max 10MB)")
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	img, data, err := processImage(src, file.Filename)
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid image: "+err.Error())
	}

	if err := a.ensureUniqueFilename(&img); err != nil {
		return err
	}

	dir := filepath.Join(a.staticDir, uploadsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, img.Filename), data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}

	if err := a.Store.SaveImage(img); err != nil {
		return err
	}

	return a.renderImageList(c)
}

func (a *App) handleImageDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}

	filename := c.Param("filename")
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return c.String(http.StatusBadRequest, "Invalid filename")
	}

	snap, err := a.Cache.Snapshot(c.Request().Context())
	if err != nil {
		return err
	}
	if users := imageUsers(snap.Posts, filename); len(users) > 0 {
		return c.String(http.StatusConflict, "Image is used by: "+strings.Join(users, ", "))
	}

	// A file already gone is fine.
	_ = os.Remove(filepath.Join(a.staticDir, uploadsSubdir, filename))

	if err := a.Store.DeleteImage(filename); err != nil {
		return err
	}

	return a.renderImageList(c)
}

func (a *App) handleImageList(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return a.renderImageList(c)
}

func (a *App) renderImageList(c echo.Context) error {
	images, err := a.Store.ListImages()
	if err != nil {
		return err
	}
	snap, err := a.Cache.Snapshot(c.Request().Context())
	if err != nil {
		return err
	}
	for i := range images {
		images[i].UsedBy = imageUsers(snap.Posts, images[i].Filename)
	}
	return Render(c, a.Views.AdminImages(images, CsrfToken(c)))
}

// imageUsers returns the slugs of posts whose thumbnail or body links to the
// uploaded file, in catalog order.
func imageUsers(posts []content.Post, filename string) []string {
	var slugs []string
	for _, p := range posts {
		if referencesUpload(p.Thumbnail, filename) || referencesUpload(p.Content, filename) {
			slugs = append(slugs, p.Slug)
		}
	}
	return slugs
}

// referencesUpload reports whether s contains "uploads/<filename>" not
// followed by another name character, so cat.jpg does not match cat.jpgx.
func referencesUpload(s, filename string) bool {
	needle := uploadsSubdir + "/" + filename
	for {
		i := strings.Index(s, needle)
		if i < 0 {
			return false
		}
		s = s[i+len(needle):]
		if s == "" || !isNameByte(s[0]) {
			return true
		}
	}
}

func isNameByte(b byte) bool {
	return b == '-' || b == '_' ||
		'0' <= b && b <= '9' || 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z'
}
