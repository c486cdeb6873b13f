// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package api

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tomtom215/vidshare/internal/apperr"
	"github.com/tomtom215/vidshare/internal/logging"
	"github.com/tomtom215/vidshare/internal/models"
)

const (
	defaultMaxUploadBytes = 512 << 20
	maxFormValueBytes     = 64 << 10
	maxExtLength          = 10
)

// tempFiles tracks the local files of one request. cleanup removes each of
// them exactly once, whatever happened to the upload.
type tempFiles struct {
	mu    sync.Mutex
	paths []string
	done  bool
}

func (t *tempFiles) add(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paths = append(t.paths, path)
}

func (t *tempFiles) cleanup() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return
	}
	t.done = true
	for _, p := range t.paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			logging.Warn().Err(err).Str("path", p).Msg("Failed to remove temporary upload")
		}
	}
}

// multipartForm is a parsed multipart request: text fields and the files
// that were accepted.
type multipartForm struct {
	fields map[string]string
	files  map[string]*models.UploadedFile
}

func (f *multipartForm) value(name string) string {
	return strings.TrimSpace(f.fields[name])
}

func (f *multipartForm) file(name string) *models.UploadedFile {
	return f.files[name]
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

// readMultipart streams a multipart body to temporary files in the upload
// directory. Only parts named in fileFields are kept; other file parts are
// discarded. The returned tracker must be cleaned up by the caller, also
// when an error is returned.
func (h *Handler) readMultipart(w http.ResponseWriter, r *http.Request, fileFields ...string) (*multipartForm, *tempFiles, error) {
	tracker := &tempFiles{}
	form := &multipartForm{
		fields: make(map[string]string),
		files:  make(map[string]*models.UploadedFile),
	}

	dir, limit := h.uploadSettings()
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, tracker, apperr.Internal("upload directory unavailable", err)
	}

	r.Body = http.MaxBytesReader(w, r.Body, limit)
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, tracker, apperr.Validation("Request must be multipart/form-data")
	}

	allowed := make(map[string]bool, len(fileFields))
	for _, f := range fileFields {
		allowed[f] = true
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, tracker, uploadError(err)
		}

		name := part.FormName()
		switch {
		case name == "":
			_ = part.Close()
		case part.FileName() == "":
			value, err := io.ReadAll(io.LimitReader(part, maxFormValueBytes))
			_ = part.Close()
			if err != nil {
				return nil, tracker, uploadError(err)
			}
			form.fields[name] = string(value)
		case !allowed[name]:
			_, err := io.Copy(io.Discard, part)
			_ = part.Close()
			if err != nil {
				return nil, tracker, uploadError(err)
			}
		default:
			if _, dup := form.files[name]; dup {
				_ = part.Close()
				return nil, tracker, apperr.Validationf("only one file may be sent as %s", name)
			}
			uploaded, err := saveTemp(dir, part.FileName(), part.Header.Get("Content-Type"), part, tracker)
			_ = part.Close()
			if err != nil {
				return nil, tracker, err
			}
			if uploaded != nil {
				form.files[name] = uploaded
			}
		}
	}
	return form, tracker, nil
}

// saveTemp copies src into a new file in dir. Empty files are dropped.
func saveTemp(dir, filename, contentType string, src io.Reader, tracker *tempFiles) (*models.UploadedFile, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) > maxExtLength {
		ext = ""
	}
	f, err := os.CreateTemp(dir, "upload-*"+ext)
	if err != nil {
		return nil, apperr.Internal("failed to store upload", err)
	}
	tracker.add(f.Name())

	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()
	if copyErr != nil {
		return nil, uploadError(copyErr)
	}
	if closeErr != nil {
		return nil, apperr.Internal("failed to store upload", closeErr)
	}
	if n == 0 {
		return nil, nil
	}

	mimetype := mimetypeOf(contentType, ext)
	logging.Debug().
		Str("file", sanitizeLogValue(filepath.Base(filename))).
		Str("mimetype", mimetype).
		Int64("bytes", n).
		Msg("Upload received")
	return &models.UploadedFile{Path: f.Name(), Mimetype: mimetype}, nil
}

// mimetypeOf prefers the declared part type and falls back to the extension.
func mimetypeOf(contentType, ext string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && mt != "application/octet-stream" {
		return mt
	}
	if byExt := mime.TypeByExtension(ext); byExt != "" {
		if mt, _, err := mime.ParseMediaType(byExt); err == nil {
			return mt
		}
	}
	return "application/octet-stream"
}

func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &apperr.Error{
			Kind:    apperr.KindValidation,
			Code:    ErrCodePayloadTooLarge,
			Message: "Upload exceeds the maximum allowed size",
			Details: map[string]interface{}{"limit_bytes": tooLarge.Limit},
		}
	}
	return apperr.Wrap(apperr.KindValidation, "Malformed multipart body", err)
}

func (h *Handler) uploadSettings() (string, int64) {
	dir := os.TempDir()
	limit := int64(defaultMaxUploadBytes)
	if h.config != nil {
		if h.config.Server.UploadDir != "" {
			dir = h.config.Server.UploadDir
		}
		if h.config.Server.MaxUploadBytes > 0 {
			limit = h.config.Server.MaxUploadBytes
		}
	}
	return dir, limit
}
