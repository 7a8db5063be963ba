package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	cvtrack "github.com/swdee/go-cvtrack"
)

// maxMemory is the portion of a multipart upload held in memory before
// spilling to temporary files
const maxMemory = 32 << 20

// processVideo handles POST /process_video.  The multipart form must contain
// a video file in the "video" field and the object to detect in the
// "target_type" field.  The annotated video is returned as an attachment.
func (s *Server) processVideo(w http.ResponseWriter, r *http.Request) {

	limit := s.cfg.MaxUploadBytes()

	if r.ContentLength > limit {
		respondError(w, "file too large", http.StatusRequestEntityTooLarge)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var maxErr *http.MaxBytesError

		if errors.As(err, &maxErr) {
			respondError(w, "file too large", http.StatusRequestEntityTooLarge)
			return
		}

		respondError(w, "no video file", http.StatusBadRequest)
		return
	}

	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("video")

	if err != nil {
		// a file part sent without a filename is parsed as a plain value
		if _, ok := r.MultipartForm.Value["video"]; ok {
			respondError(w, "no file selected", http.StatusBadRequest)
			return
		}

		respondError(w, "no video file", http.StatusBadRequest)
		return
	}

	defer file.Close()

	if header.Filename == "" {
		respondError(w, "no file selected", http.StatusBadRequest)
		return
	}

	if !cvtrack.AllowedExtension(header.Filename) {
		respondError(w, "unsupported file type", http.StatusBadRequest)
		return
	}

	targetName := r.PostFormValue("target_type")

	if targetName == "" {
		respondError(w, "target type not specified", http.StatusBadRequest)
		return
	}

	target, err := cvtrack.ParseTarget(targetName)

	if err != nil {
		respondError(w, "unsupported target type", http.StatusBadRequest)
		return
	}

	logger := log.WithFields(log.Fields{
		"request_id": middleware.GetReqID(r.Context()),
		"target":     target,
		"file":       header.Filename,
	})

	name := uuid.NewString() + "_" + secureFilename(header.Filename)
	inPath := filepath.Join(s.cfg.Server.UploadDir, name)
	outPath := filepath.Join(s.cfg.Server.OutputDir, "processed_"+name)

	if err := saveUpload(file, inPath); err != nil {
		logger.WithError(err).Error("Error saving upload")
		respondError(w, "error saving upload", http.StatusInternalServerError)
		return
	}

	if !s.cfg.Server.KeepFiles {
		defer removeFile(inPath)
		defer removeFile(outPath)
	}

	pool := s.pools[target]
	det, err := pool.GetContext(r.Context())

	if err != nil {
		logger.WithError(err).Warn("No detector available")
		respondError(w, "server busy", http.StatusServiceUnavailable)
		return
	}

	res, err := cvtrack.ProcessVideo(r.Context(), det, inPath, outPath,
		cvtrack.VideoOptions{Codecs: s.cfg.Video.Codecs})

	pool.Return(det)

	if err != nil {
		logger.WithError(err).Error("Error processing video")
		respondError(w, "error processing video", http.StatusInternalServerError)
		return
	}

	out, err := os.Open(res.OutputPath)

	if err != nil {
		logger.WithError(err).Error("Error opening processed video")
		respondError(w, "processed video not found", http.StatusInternalServerError)
		return
	}

	defer out.Close()

	stat, err := out.Stat()

	if err != nil {
		respondError(w, "processed video not found", http.StatusInternalServerError)
		return
	}

	downloadName := "processed_" + filepath.Base(header.Filename)

	w.Header().Set("Content-Type", contentType(header.Filename))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment",
		map[string]string{"filename": downloadName}))
	w.Header().Set("X-Frames-Processed", strconv.Itoa(res.Frames))
	w.Header().Set("X-Tracks-Started", strconv.Itoa(res.Stats.Started))

	logger.WithFields(log.Fields{
		"frames":  res.Frames,
		"started": res.Stats.Started,
		"elapsed": res.Elapsed,
	}).Info("Video processed")

	http.ServeContent(w, r, downloadName, stat.ModTime(), out)
}

// health handles GET /health
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// targets handles GET /targets
func (s *Server) targets(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string][]cvtrack.Target{"targets": cvtrack.Targets()},
		http.StatusOK)
}

// saveUpload writes the uploaded file to path
func saveUpload(src io.Reader, path string) error {

	dst, err := os.Create(path)

	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}

	return dst.Close()
}

func removeFile(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Error removing file %s: %v", path, err)
	}
}

func respondJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, map[string]string{"error": message}, status)
}
