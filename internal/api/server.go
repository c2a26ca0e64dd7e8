// internal/api/server.go

// Package api exposes the control-plane operations over HTTP. Handlers
// only decode requests, forward to the lifecycle manager or the command
// channel, and shape the JSON reply.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tamzrod/spisim-control/internal/driver"
	"github.com/tamzrod/spisim-control/internal/sequence"
	"github.com/tamzrod/spisim-control/internal/spi"
	"github.com/tamzrod/spisim-control/internal/status"
)

const maxBody = 1 << 20

// MsgDeviceUnknown is returned when the module is listed but this
// process did not record which device node it created.
const MsgDeviceUnknown = "device unknown, reload the driver"

// Driver is the lifecycle surface the handlers use.
type Driver interface {
	status.Source
	Load(ctx context.Context, deviceName string, seqs []sequence.Sequence) driver.Result
	Unload(ctx context.Context) driver.Result
	SaveSequences(seqs []sequence.Sequence) driver.Result
}

// Commander sends one command to a device node.
type Commander interface {
	SendCommand(ctx context.Context, devicePath, commandHex string) spi.Result
}

// Logs is the operator log buffer.
type Logs interface {
	GetAll() []string
	Clear()
}

// Server holds the collaborators of the HTTP surface.
type Server struct {
	Driver        Driver
	SPI           Commander
	Logs          Logs
	Log           *slog.Logger
	DefaultDevice string

	now func() time.Time
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	if s.Log == nil {
		s.Log = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api/spi", func(r chi.Router) {
		r.Post("/command", s.handleCommand)
		r.Post("/load-driver", s.handleLoad)
		r.Post("/config", s.handleLoad)
		r.Post("/unload-driver", s.handleUnload)
		r.Post("/sequences", s.handleSequences)
		r.Get("/status", s.handleStatus)
		r.Get("/logs", s.handleLogs)
		r.Post("/clear-logs", s.handleClearLogs)
	})

	return r
}

// ---- wire shapes ----

type reply struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Response string `json:"response,omitempty"`
	Kind     string `json:"kind,omitempty"`
}

type commandRequest struct {
	Command    string `json:"command"`
	DevicePath string `json:"device_path"`
}

type loadRequest struct {
	DeviceName string              `json:"device_name"`
	Sequences  []sequence.Sequence `json:"sequences"`
}

type statusReply struct {
	Status string `json:"status"`
	status.Snapshot
}

type logsReply struct {
	Status string   `json:"status"`
	Logs   []string `json:"logs"`
}

// ---- handlers ----

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := decode(r, &req, false); err != nil {
		writeJSON(w, http.StatusBadRequest, reply{Status: "error", Message: "invalid request: " + err.Error()})
		return
	}

	if !s.Driver.IsLoaded(r.Context()) {
		writeJSON(w, http.StatusBadRequest, reply{Status: "error", Message: "driver not loaded"})
		return
	}

	path := s.Driver.DevicePath()
	if path == "" {
		writeJSON(w, http.StatusConflict, reply{Status: "error", Message: MsgDeviceUnknown})
		return
	}
	if req.DevicePath != "" && req.DevicePath != path {
		writeJSON(w, http.StatusBadRequest, reply{Status: "error", Message: "device path does not match the loaded device"})
		return
	}

	res := s.SPI.SendCommand(r.Context(), path, req.Command)
	writeJSON(w, commandCode(res), reply{
		Status:   res.Status.String(),
		Message:  res.Message,
		Response: res.Response,
		Kind:     kindOf(res),
	})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req loadRequest
	if err := decode(r, &req, true); err != nil {
		writeJSON(w, http.StatusBadRequest, reply{Status: "error", Message: "invalid request: " + err.Error()})
		return
	}
	if req.DeviceName == "" {
		req.DeviceName = s.DefaultDevice
	}

	s.writeResult(w, s.Driver.Load(r.Context(), req.DeviceName, req.Sequences))
}

func (s *Server) handleUnload(w http.ResponseWriter, r *http.Request) {
	s.writeResult(w, s.Driver.Unload(r.Context()))
}

func (s *Server) handleSequences(w http.ResponseWriter, r *http.Request) {
	var seqs []sequence.Sequence
	if err := decode(r, &seqs, false); err != nil {
		writeJSON(w, http.StatusBadRequest, reply{Status: "error", Message: "invalid request: " + err.Error()})
		return
	}
	s.writeResult(w, s.Driver.SaveSequences(seqs))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusReply{
		Status:   "success",
		Snapshot: status.Collect(r.Context(), s.Driver, s.now()),
	})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	logs := s.Logs.GetAll()
	if logs == nil {
		logs = []string{}
	}
	writeJSON(w, http.StatusOK, logsReply{Status: "success", Logs: logs})
}

func (s *Server) handleClearLogs(w http.ResponseWriter, r *http.Request) {
	s.Logs.Clear()
	writeJSON(w, http.StatusOK, reply{Status: "success", Message: "logs cleared"})
}

// ---- helpers ----

func (s *Server) writeResult(w http.ResponseWriter, res driver.Result) {
	if res.OK {
		writeJSON(w, http.StatusOK, reply{Status: "success", Message: res.Message})
		return
	}

	code := http.StatusInternalServerError
	if errors.Is(res.Err, driver.ErrInvalidName) || errors.Is(res.Err, sequence.ErrInvalid) {
		code = http.StatusBadRequest
	}
	writeJSON(w, code, reply{Status: "error", Message: res.Message})
}

func commandCode(res spi.Result) int {
	switch res.Kind {
	case spi.KindProtocol:
		return http.StatusBadRequest
	case spi.KindNotFound:
		return http.StatusNotFound
	case spi.KindPermission:
		return http.StatusForbidden
	case spi.KindIO:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}

func kindOf(res spi.Result) string {
	if res.Kind == spi.KindNone {
		return ""
	}
	return res.Kind.String()
}

// decode reads a JSON body into v. An empty body is accepted when
// allowEmpty is set.
func decode(r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
