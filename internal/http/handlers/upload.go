package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// stageUpload saves the multipart file in field to dir and returns its path.
// A request without that file returns "" and no error. The caller removes the
// file once it has been uploaded.
func stageUpload(ctx *gin.Context, field, dir string) (string, error) {
	if !strings.HasPrefix(strings.ToLower(ctx.ContentType()), "multipart/") {
		return "", nil
	}

	fh, err := ctx.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	path := filepath.Join(dir, uuid.NewString()+ext)

	if err := ctx.SaveUploadedFile(fh, path); err != nil {
		return "", err
	}

	return path, nil
}

func removeStaged(path string) {
	if path != "" {
		_ = os.Remove(path)
	}
}
