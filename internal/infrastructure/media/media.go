package media

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/oksasatya/go-account-service/internal/application"
)

// ObjectPath builds a collision-free object key: <kind>/<userID>/<uuid><ext>.
func ObjectPath(kind application.MediaKind, userID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(string(kind), userID, uuid.NewString()+ext)
}

func contentTypeOf(f *application.Upload) string {
	if f.ContentType != "" {
		return f.ContentType
	}
	return "application/octet-stream"
}
