package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/moveinsync/movi/internal/domain/transport"
	"github.com/moveinsync/movi/internal/port/speech"
	"github.com/moveinsync/movi/internal/service"
)

// maxUploadSize bounds multipart uploads (voice clips and screenshots).
const maxUploadSize = 10 << 20 // 10 MB

// ChatAgent handles one conversation turn.
type ChatAgent interface {
	HandleTurn(ctx context.Context, page, message string, image *service.Image) (string, error)
}

// FleetReader serves the read-only fleet data the dashboard renders.
type FleetReader interface {
	ListStops(ctx context.Context) ([]transport.Stop, error)
	ListPaths(ctx context.Context) ([]transport.Path, error)
	ListRoutes(ctx context.Context) ([]transport.Route, error)
	ListVehicles(ctx context.Context) ([]transport.Vehicle, error)
	ListDrivers(ctx context.Context) ([]transport.Driver, error)
	ListTrips(ctx context.Context) ([]transport.TripDetail, error)
}

// Handlers bundles the API endpoints and their collaborators.
type Handlers struct {
	agent       ChatAgent
	fleet       FleetReader
	transcriber speech.Transcriber
	synthesizer speech.Synthesizer
	logger      *slog.Logger
}

// NewHandlers wires the API handlers.
func NewHandlers(
	agent ChatAgent,
	fleet FleetReader,
	transcriber speech.Transcriber,
	synthesizer speech.Synthesizer,
	log *slog.Logger,
) *Handlers {
	return &Handlers{
		agent:       agent,
		fleet:       fleet,
		transcriber: transcriber,
		synthesizer: synthesizer,
		logger:      log,
	}
}

// Root reports service status for health checks.
func (h *Handlers) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "running",
		"service": "Movi Transport API",
		"version": "2.0.0",
	})
}

// Health is the liveness probe.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type chatResponse struct {
	Response string `json:"response"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// Chat is the main conversation endpoint. It accepts a multipart form with a
// text message, the page the user is on, and an optional screenshot.
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	message := r.FormValue("message")
	if message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	page := r.FormValue("currentPage")

	var image *service.Image
	if file, header, err := r.FormFile("image"); err == nil {
		data, readErr := io.ReadAll(file)
		_ = file.Close()
		if readErr != nil {
			writeError(w, http.StatusBadRequest, "could not read image upload")
			return
		}
		mimeType := header.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = http.DetectContentType(data)
		}
		image = &service.Image{Data: data, MimeType: mimeType}
	}

	reply, err := h.agent.HandleTurn(r.Context(), page, message, image)
	if err != nil {
		h.logger.Error("chat turn failed", "page", page, "error", err)
		writeJSON(w, http.StatusInternalServerError, chatResponse{
			Success: false,
			Error:   "internal server error",
		})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Response: reply, Success: true})
}

type transcriptResponse struct {
	Transcript string `json:"transcript"`
	Success    bool   `json:"success"`
}

// SpeechToText transcribes an uploaded voice clip.
func (h *Handlers) SpeechToText(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read audio upload")
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/webm"
	}

	transcript, err := h.transcriber.Transcribe(r.Context(), data, contentType)
	if err != nil {
		h.logger.Error("transcription failed", "error", err)
		writeDomainError(w, err, "transcription failed")
		return
	}

	writeJSON(w, http.StatusOK, transcriptResponse{Transcript: transcript, Success: true})
}

type speechRequest struct {
	Text string `json:"text"`
}

// TextToSpeech synthesizes the given text and streams back MPEG audio.
func (h *Handlers) TextToSpeech(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[speechRequest](w, r)
	if !ok {
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	audio, err := h.synthesizer.Synthesize(r.Context(), req.Text)
	if err != nil {
		h.logger.Error("speech synthesis failed", "error", err)
		writeDomainError(w, err, "speech synthesis failed")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(audio); err != nil {
		h.logger.Error("failed to write audio response", "error", err)
	}
}

func (h *Handlers) ListStops(w http.ResponseWriter, r *http.Request) {
	stops, err := h.fleet.ListStops(r.Context())
	if err != nil {
		writeDomainError(w, err, "stops not found")
		return
	}
	writeJSON(w, http.StatusOK, stops)
}

func (h *Handlers) ListPaths(w http.ResponseWriter, r *http.Request) {
	paths, err := h.fleet.ListPaths(r.Context())
	if err != nil {
		writeDomainError(w, err, "paths not found")
		return
	}
	writeJSON(w, http.StatusOK, paths)
}

func (h *Handlers) ListRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := h.fleet.ListRoutes(r.Context())
	if err != nil {
		writeDomainError(w, err, "routes not found")
		return
	}
	writeJSON(w, http.StatusOK, routes)
}

func (h *Handlers) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.fleet.ListVehicles(r.Context())
	if err != nil {
		writeDomainError(w, err, "vehicles not found")
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

func (h *Handlers) ListDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.fleet.ListDrivers(r.Context())
	if err != nil {
		writeDomainError(w, err, "drivers not found")
		return
	}
	writeJSON(w, http.StatusOK, drivers)
}

func (h *Handlers) ListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := h.fleet.ListTrips(r.Context())
	if err != nil {
		writeDomainError(w, err, "trips not found")
		return
	}
	writeJSON(w, http.StatusOK, trips)
}
