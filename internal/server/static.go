package server

import (
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	"mergington-activities/internal/common/errors"

	"github.com/gin-gonic/gin"
)

const staticParam = "filepath"

// staticFiles serves files under root without http.FileServer's
// index.html redirect, so /static/index.html answers 200 directly.
func staticFiles(root string) gin.HandlerFunc {
	fsys := os.DirFS(root)
	return func(c *gin.Context) {
		name := strings.TrimPrefix(path.Clean("/"+c.Param(staticParam)), "/")
		if name == "" {
			name = "index.html"
		}

		f, err := fsys.Open(name)
		if err != nil {
			notFound(c)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil || info.IsDir() {
			notFound(c)
			return
		}
		content, ok := f.(io.ReadSeeker)
		if !ok {
			notFound(c)
			return
		}
		http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), content)
	}
}

func notFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, errors.ErrorResponse{Detail: "Not Found"})
}
