package server

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// saveUpload stores the request's "file" form field under the uploads
// dir and returns its public URL path. The stored name is a fresh UUID;
// only the extension survives from the client.
func (s *Server) saveUpload(c echo.Context) (string, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", err
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	dst, err := os.Create(filepath.Join(s.dataDir, "uploads", name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return "/uploads/" + name, nil
}

// removeUpload deletes a stored file given its public URL path. Missing
// files are not an error.
func (s *Server) removeUpload(urlPath string) {
	if !strings.HasPrefix(urlPath, "/uploads/") {
		return
	}
	os.Remove(filepath.Join(s.dataDir, "uploads", path.Base(urlPath)))
}
