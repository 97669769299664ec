package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/dmallory42/semchunk/internal/chunker"
	"github.com/dmallory42/semchunk/internal/doctree"
	"github.com/dmallory42/semchunk/internal/parser"
)

// handleChunk parses and chunks an uploaded document synchronously, returning
// the full chunk list in the response. Large documents should go through the
// async /api/ingest path instead.
func (s *Server) handleChunk(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	filename, data, ok := s.readUploadedFile(w, r)
	if !ok {
		return
	}

	maxTokens := s.maxTokensParam(r)

	p, err := parser.ForFile(filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if pdfParser, ok := p.(*parser.PDFParser); ok {
		pdfParser.FallbackPdftotext = s.cfg.PDFFallbackPdftotext
	}

	root, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		jsonError(w, "parse failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	chunks, err := s.builder.Build(root, maxTokens)
	if err != nil {
		var structural *doctree.StructureError
		switch {
		case errors.Is(err, chunker.ErrInvalidMaxTokens):
			jsonError(w, err.Error(), http.StatusBadRequest)
		case errors.As(err, &structural):
			jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			jsonError(w, "chunking failed: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}

	overflows := 0
	for _, c := range chunks {
		if c.Overflow {
			overflows++
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"filename":    filename,
		"title":       parser.TitleFromFilename(filename),
		"max_tokens":  maxTokens,
		"chunk_count": len(chunks),
		"overflows":   overflows,
		"chunks":      chunks,
	})
}

// readUploadedFile pulls the "file" form field, enforcing the upload size
// limit and extension whitelist. On failure the response is already written.
func (s *Server) readUploadedFile(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return "", nil, false
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return "", nil, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return "", nil, false
	}
	return filename, data, true
}

// maxTokensParam returns the max_tokens form override, or the configured
// default. Invalid values fall through to the builder, which rejects them
// with a proper error instead of silently substituting the default.
func (s *Server) maxTokensParam(r *http.Request) int {
	v := r.FormValue("max_tokens")
	if v == "" {
		return s.cfg.DefaultMaxTokens
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}
