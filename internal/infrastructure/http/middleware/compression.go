package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

var compressibleTypes = []string{
	"application/json",
	"text/",
	"image/svg+xml",
}

// Compression encodes text responses with brotli or gzip, preferring
// brotli when the client accepts both. Images are passed through.
func (m *Middleware) Compression() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.config.Server.EnableCompression || c.Request.Method == http.MethodHead {
			c.Next()
			return
		}

		encoding := negotiateEncoding(c.GetHeader("Accept-Encoding"))
		if encoding == "" {
			c.Next()
			return
		}

		original := c.Writer
		writer := &compressWriter{ResponseWriter: original, encoding: encoding}
		c.Writer = writer
		defer func() {
			writer.close()
			c.Writer = original
		}()

		c.Next()
	}
}

func negotiateEncoding(accept string) string {
	var gz bool
	for _, part := range strings.Split(accept, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if q, ok := strings.CutPrefix(strings.TrimSpace(params), "q="); ok {
			if weight, err := strconv.ParseFloat(q, 64); err == nil && weight == 0 {
				continue
			}
		}
		switch strings.ToLower(name) {
		case "br":
			return "br"
		case "gzip":
			gz = true
		}
	}
	if gz {
		return "gzip"
	}
	return ""
}

type flushWriteCloser interface {
	io.WriteCloser
	Flush() error
}

// compressWriter decides on the first body write whether to encode, so
// handlers can still set the content type and status first
type compressWriter struct {
	gin.ResponseWriter
	encoding string
	encoder  flushWriteCloser
	decided  bool
}

func (w *compressWriter) Write(data []byte) (int, error) {
	if !w.decided {
		w.decide()
	}
	if w.encoder == nil {
		return w.ResponseWriter.Write(data)
	}
	return w.encoder.Write(data)
}

func (w *compressWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *compressWriter) Flush() {
	if w.encoder != nil {
		_ = w.encoder.Flush()
	}
	w.ResponseWriter.Flush()
}

func (w *compressWriter) decide() {
	w.decided = true

	header := w.Header()
	if header.Get("Content-Encoding") != "" || !compressible(header.Get("Content-Type")) {
		return
	}
	status := w.Status()
	if status < http.StatusOK || status == http.StatusNoContent || status == http.StatusNotModified {
		return
	}

	header.Set("Content-Encoding", w.encoding)
	header.Add("Vary", "Accept-Encoding")
	header.Del("Content-Length")

	switch w.encoding {
	case "br":
		w.encoder = brotli.NewWriterLevel(w.ResponseWriter, brotli.DefaultCompression)
	case "gzip":
		w.encoder = gzip.NewWriter(w.ResponseWriter)
	}
}

func (w *compressWriter) close() {
	if w.encoder != nil {
		_ = w.encoder.Close()
	}
}

func compressible(contentType string) bool {
	contentType = strings.ToLower(contentType)
	for _, prefix := range compressibleTypes {
		if strings.HasPrefix(contentType, prefix) {
			return true
		}
	}
	return false
}
