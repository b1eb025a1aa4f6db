package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"solocraft/internal/engine"
)

// Response is the envelope every POST route answers with. Extra fields are
// flattened next to success.
type Response map[string]any

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeOK(w http.ResponseWriter, fields Response) {
	out := Response{"success": true}
	for k, v := range fields {
		out[k] = v
	}
	writeJSON(w, http.StatusOK, out)
}

// writeFailure answers domain errors with 200 and success=false, the way the
// web client expects. Anything unclassified is a 500.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	kind := engine.Classify(err)
	if kind == engine.KindInternal {
		s.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Response{
			"success": false,
			"message": "internal error",
		})
		return
	}
	s.log.Debug("request rejected", zap.String("path", r.URL.Path), zap.String("kind", string(kind)), zap.Error(err))
	writeJSON(w, http.StatusOK, Response{
		"success": false,
		"message": err.Error(),
		"kind":    kind,
	})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, Response{
		"success": false,
		"message": message,
	})
}

// readJSON decodes the request body into v. An empty body decodes as {}.
func readJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("malformed JSON body: %w", err)
	}
	return nil
}
