// Package responsewriter wraps http.ResponseWriter to capture the status
// code and byte count for access logging.
package responsewriter

import "net/http"

// Wrapped records the response status and size as the handler writes.
type Wrapped struct {
	http.ResponseWriter
	status int
	bytes  int
}

// Wrap returns a recording writer. The status defaults to 200 because
// handlers that never call WriteHeader still respond 200.
func Wrap(w http.ResponseWriter) *Wrapped {
	return &Wrapped{ResponseWriter: w, status: http.StatusOK}
}

func (w *Wrapped) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *Wrapped) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// StatusCode returns the recorded response status.
func (w *Wrapped) StatusCode() int { return w.status }

// BytesWritten returns the number of body bytes written so far.
func (w *Wrapped) BytesWritten() int { return w.bytes }
