package bcmagic

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// WriteJSON encodes v as the response body
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleIndex serves the barcode magic page
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(magicHTML)
}

// handleMagic answers a scan with an instruction
func (s *Server) handleMagic(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		slog.Error("Error parsing scan form", "error", err)
		corsError(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	text := r.PostForm.Get("text")
	mode := r.PostForm.Get("bcm_mode")
	resp := s.service.Magic(text, mode)
	slog.Info("Scan processed", "mode", mode, "result", resp.Mode)

	setCORSHeaders(w)
	WriteJSON(w, http.StatusOK, resp)
}

// handleJSONTest echoes a scan back
func (s *Server) handleJSONTest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		corsError(w, "Error parsing form", http.StatusBadRequest)
		return
	}
	setCORSHeaders(w)
	WriteJSON(w, http.StatusOK, s.service.JSONTest(r.PostForm.Get("text")))
}

// handleListKeywordMaps returns all keyword maps
func (s *Server) handleListKeywordMaps(w http.ResponseWriter, r *http.Request) {
	maps, err := s.service.ListKeywordMaps()
	if err != nil {
		slog.Error("Error listing keyword maps", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	WriteJSON(w, http.StatusOK, maps)
}

// handleSaveKeywordMap creates or replaces a keyword map
func (s *Server) handleSaveKeywordMap(w http.ResponseWriter, r *http.Request) {
	var k KeywordMap
	if err := json.NewDecoder(r.Body).Decode(&k); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.service.SaveKeywordMap(&k); err != nil {
		slog.Error("Error saving keyword map", "keyword", k.Keyword, "error", err)
		setCORSHeaders(w)
		WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
		return
	}

	WriteJSON(w, http.StatusCreated, &k)
}

// handleGetKeywordMap returns one keyword map
func (s *Server) handleGetKeywordMap(w http.ResponseWriter, r *http.Request) {
	keyword := r.PathValue("keyword")
	k, err := s.service.GetKeywordMap(keyword)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			corsError(w, "Keyword map not found", http.StatusNotFound)
			return
		}
		slog.Error("Error getting keyword map", "keyword", keyword, "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	WriteJSON(w, http.StatusOK, k)
}

// handleDeleteKeywordMap deletes a keyword map
func (s *Server) handleDeleteKeywordMap(w http.ResponseWriter, r *http.Request) {
	keyword := r.PathValue("keyword")
	if err := s.service.DeleteKeywordMap(keyword); err != nil {
		if errors.Is(err, ErrNotFound) {
			corsError(w, "Keyword map not found", http.StatusNotFound)
			return
		}
		corsError(w, "Error deleting keyword map", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
