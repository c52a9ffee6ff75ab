package handler

import (
	"io"
	"net/http"
)

// headerWriter adds a fixed header set to the response just before the
// status line is committed, after the wrapped handler set its own headers.
type headerWriter struct {
	http.ResponseWriter
	headers http.Header
	applied bool
}

func newHeaderWriter(w http.ResponseWriter, headers http.Header) *headerWriter {
	return &headerWriter{ResponseWriter: w, headers: headers}
}

func (w *headerWriter) applyHeaders() {
	if w.applied {
		return
	}
	w.applied = true

	dst := w.ResponseWriter.Header()
	for key, values := range w.headers {
		dst[http.CanonicalHeaderKey(key)] = append([]string(nil), values...)
	}
}

func (w *headerWriter) WriteHeader(code int) {
	// 1xx responses do not finalize the header block
	if code >= http.StatusOK || code == http.StatusSwitchingProtocols {
		w.applyHeaders()
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *headerWriter) Write(b []byte) (int, error) {
	if !w.applied {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// ReadFrom keeps the sendfile path of the underlying writer available
func (w *headerWriter) ReadFrom(src io.Reader) (int64, error) {
	if !w.applied {
		w.WriteHeader(http.StatusOK)
	}
	return io.Copy(w.ResponseWriter, src)
}

func (w *headerWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// statusWriter records the status code and body size of a response
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 && code >= http.StatusOK {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += int64(n)
	return n, err
}

func (w *statusWriter) ReadFrom(src io.Reader) (int64, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := io.Copy(w.ResponseWriter, src)
	w.bytes += n
	return n, err
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Status returns the recorded status, 200 if nothing was written
func (w *statusWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}
