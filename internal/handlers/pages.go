package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

type PageHandler struct {
	publicDir string
	outputDir string
}

func NewPageHandler(publicDir, outputDir string) *PageHandler {
	return &PageHandler{
		publicDir: publicDir,
		outputDir: outputDir,
	}
}

// Page serves a fixed document from the public directory.
func (h *PageHandler) Page(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		serveFile(c, h.publicDir, name)
	}
}

func (h *PageHandler) Output(c *gin.Context) {
	serveFile(c, h.outputDir, c.Param("filepath"))
}

// Public serves any other GET or HEAD path from the public directory.
func (h *PageHandler) Public(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.String(http.StatusNotFound, "Not Found")
		return
	}
	serveFile(c, h.publicDir, c.Request.URL.Path)
}

func (h *PageHandler) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// serveFile resolves name under root. Cleaning against "/" keeps ".."
// segments from leaving root. The file is served as-is, without
// http.ServeFile's index.html redirect or its rejection of ".." in the URL.
func serveFile(c *gin.Context, root, name string) {
	rel := path.Clean("/" + name)
	full := filepath.Join(root, filepath.FromSlash(rel))

	f, err := os.Open(full)
	if err != nil {
		c.String(http.StatusNotFound, "Not Found")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		c.String(http.StatusNotFound, "Not Found")
		return
	}

	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}
