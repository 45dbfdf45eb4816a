package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-account-service/internal/application"
)

var errFileTooLarge = errors.New("file too large")

// formUpload opens the named multipart file. A missing file yields (nil, nil, nil).
func formUpload(c *gin.Context, field string, maxBytes int64) (*application.Upload, io.Closer, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	return openUpload(fh, maxBytes)
}

func openUpload(fh *multipart.FileHeader, maxBytes int64) (*application.Upload, io.Closer, error) {
	if maxBytes > 0 && fh.Size > maxBytes {
		return nil, nil, errFileTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &application.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, f, nil
}

func closeAll(cs ...io.Closer) {
	for _, c := range cs {
		if c != nil {
			_ = c.Close()
		}
	}
}
