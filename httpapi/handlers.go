package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mhpenta/magicpix"
)

const maxBodyBytes = 1 << 20

// Handlers serves one process-local session.
type Handlers struct {
	orchestrator *magicpix.Orchestrator
	logger       *slog.Logger
}

type imageJSON struct {
	ID        string    `json:"id"`
	Data      string    `json:"data"`
	Prompt    string    `json:"prompt"`
	Timestamp time.Time `json:"timestamp"`
}

type slotJSON struct {
	Pending   bool   `json:"pending"`
	LastError string `json:"lastError,omitempty"`
	Input     string `json:"input"`
}

type sessionJSON struct {
	Mode     string      `json:"mode"`
	Current  *imageJSON  `json:"current"`
	History  []imageJSON `json:"history"`
	Generate slotJSON    `json:"generate"`
	Edit     slotJSON    `json:"edit"`
}

type resultJSON struct {
	Outcome string `json:"outcome"`
	Image   string `json:"image,omitempty"`
	Text    string `json:"text,omitempty"`
	Error   string `json:"error,omitempty"`
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type editRequest struct {
	Instruction string `json:"instruction"`
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Suggestions returns starter prompts and preset edits.
func (h *Handlers) Suggestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"prompts": magicpix.Suggestions(),
		"edits":   magicpix.PresetEdits(),
	})
}

// Session returns the current image, history, mode and action slots.
func (h *Handlers) Session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sessionView())
}

// Generate runs one generation request.
func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// A started call always runs to completion, even if the client goes away.
	ctx := context.WithoutCancel(r.Context())
	result, err := h.orchestrator.RequestGeneration(ctx, req.Prompt)
	if err != nil {
		h.writeRejection(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResultJSON(result))
}

// Edit runs one edit request against the current image.
func (h *Handlers) Edit(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := context.WithoutCancel(r.Context())
	result, err := h.orchestrator.RequestEdit(ctx, req.Instruction)
	if err != nil {
		h.writeRejection(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResultJSON(result))
}

// GoToCreate switches the session back to the create screen.
func (h *Handlers) GoToCreate(w http.ResponseWriter, r *http.Request) {
	h.orchestrator.Session().GoToCreate()
	writeJSON(w, http.StatusOK, h.sessionView())
}

// SelectFromHistory makes a history record current.
func (h *Handlers) SelectFromHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.orchestrator.Session().SelectFromHistory(id); err != nil {
		h.writeRejection(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessionView())
}

// DownloadCurrent serves the current image as a PNG attachment.
func (h *Handlers) DownloadCurrent(w http.ResponseWriter, r *http.Request) {
	cur, ok := h.orchestrator.Session().Current()
	if !ok {
		writeError(w, http.StatusNotFound, magicpix.ErrNoCurrentImage.Error())
		return
	}

	data, err := magicpix.DecodeImagePayload(cur.Data)
	if err != nil {
		h.logger.Error("current image cannot be decoded",
			"request_id", RequestIDFromContext(r.Context()),
			"image_id", cur.ID,
			"error", err.Error(),
		)
		writeError(w, http.StatusInternalServerError, "image data is corrupt")
		return
	}

	filename := fmt.Sprintf("magic-pix-%d.png", time.Now().UnixMilli())
	w.Header().Set("Content-Type", magicpix.EditMIMEType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handlers) sessionView() sessionJSON {
	snap := h.orchestrator.Session().Snapshot()

	view := sessionJSON{
		Mode:     snap.Mode.String(),
		History:  make([]imageJSON, 0, len(snap.History)),
		Generate: toSlotJSON(h.orchestrator.State(magicpix.ActionGenerate)),
		Edit:     toSlotJSON(h.orchestrator.State(magicpix.ActionEdit)),
	}
	if snap.Current != nil {
		cur := toImageJSON(*snap.Current)
		view.Current = &cur
	}
	for _, rec := range snap.History {
		view.History = append(view.History, toImageJSON(rec))
	}
	return view
}

func (h *Handlers) writeRejection(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, magicpix.ErrBlankInput):
		status = http.StatusBadRequest
	case errors.Is(err, magicpix.ErrRecordNotFound):
		status = http.StatusNotFound
	case errors.Is(err, magicpix.ErrActionPending),
		errors.Is(err, magicpix.ErrWrongMode),
		errors.Is(err, magicpix.ErrNoCurrentImage),
		errors.Is(err, magicpix.ErrInvalidTransition):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			"request_id", RequestIDFromContext(r.Context()),
			"error", err.Error(),
		)
	}
	writeError(w, status, err.Error())
}

func toImageJSON(rec magicpix.ImageRecord) imageJSON {
	return imageJSON{
		ID:        rec.ID,
		Data:      rec.Data,
		Prompt:    rec.Prompt,
		Timestamp: rec.Timestamp,
	}
}

func toSlotJSON(s magicpix.ActionState) slotJSON {
	return slotJSON{Pending: s.Pending, LastError: s.LastError, Input: s.Input}
}

func toResultJSON(r magicpix.Result) resultJSON {
	out := resultJSON{Outcome: r.Outcome.String()}
	if r.OK() {
		out.Image = r.Image
		out.Text = r.Text
	} else {
		out.Error = r.Message
	}
	return out
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
