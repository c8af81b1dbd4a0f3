package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/matt-g-everett/keyframer/keyframe"
	"github.com/matt-g-everett/keyframer/playback"
	"github.com/matt-g-everett/keyframer/preset"
	"github.com/matt-g-everett/keyframer/project"
	"github.com/matt-g-everett/keyframer/stream"
	"github.com/matt-g-everett/keyframer/util"
	"github.com/rs/zerolog/log"
)

const (
	defaultSamples = 60
	maxSamples     = 1000
	maxBodyBytes   = 8 << 20
)

// Api serves the playback controller and project store over HTTP.
type Api struct {
	config     stream.Config
	controller *stream.Controller
	repo       project.Repository
	hub        *Hub

	mu         sync.Mutex
	project    *project.Project
	transition time.Duration
}

// NewApi creates an Api for the project currently loaded into controller.
func NewApi(config stream.Config, controller *stream.Controller, repo project.Repository, hub *Hub, p *project.Project) *Api {
	a := new(Api)
	a.config = config
	a.controller = controller
	a.repo = repo
	a.hub = hub
	a.project = p
	return a
}

// SetTransition sets how long a newly loaded project fades in for.
func (a *Api) SetTransition(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.transition = d
}

// Handler returns the API routes plus the static client.
func (a *Api) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", a.handleStatus)
	mux.HandleFunc("GET /api/frame", a.handleFrame)
	mux.HandleFunc("POST /api/control", a.handleControl)
	mux.HandleFunc("GET /api/easings", a.handleEasings)
	mux.HandleFunc("GET /api/easings/{name}", a.handleEasingCurve)
	mux.HandleFunc("GET /api/presets", a.handlePresets)
	mux.HandleFunc("POST /api/objects", a.handleAddObject)
	mux.HandleFunc("DELETE /api/objects/{id}", a.handleRemoveObject)
	mux.HandleFunc("PUT /api/objects/{id}/properties/{property}", a.handleSetProperty)
	mux.HandleFunc("GET /api/objects/{id}/keyframes", a.handleListKeyframes)
	mux.HandleFunc("POST /api/objects/{id}/keyframes", a.handleAddKeyframe)
	mux.HandleFunc("DELETE /api/objects/{id}/keyframes/{property}/{frame}", a.handleRemoveKeyframe)
	mux.HandleFunc("POST /api/objects/{id}/presets/{preset}", a.handleApplyPreset)
	mux.HandleFunc("GET /api/projects", a.handleListProjects)
	mux.HandleFunc("POST /api/project", a.handleSaveProject)
	mux.HandleFunc("GET /api/project/{id}", a.handleLoadProject)
	mux.HandleFunc("DELETE /api/project/{id}", a.handleDeleteProject)
	if a.hub != nil {
		mux.Handle("GET /ws", a.hub)
	}
	if a.config.API.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(a.config.API.StaticDir)))
	}
	return mux
}

// Serve listens until ctx is done, then shuts the server down.
func (a *Api) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.config.API.Listen,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info().Str("listen", srv.Addr).Msg("Listening...")
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := sonic.ConfigStd.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, keyframe.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, project.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, stream.ErrStopped):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("Request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func readJSON(r *http.Request, v interface{}) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if err := sonic.ConfigStd.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", keyframe.ErrInvalidArgument, err)
	}
	return nil
}

func (a *Api) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.controller.Status())
}

func (a *Api) handleFrame(w http.ResponseWriter, r *http.Request) {
	data, err := a.controller.CurrentFrame().MarshalJSON()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (a *Api) handleControl(w http.ResponseWriter, r *http.Request) {
	var msg stream.ControlMessage
	if err := readJSON(r, &msg); err != nil {
		writeError(w, err)
		return
	}
	if err := a.controller.Apply(msg); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a.controller.Status())
}

func (a *Api) handleEasings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, keyframe.EasingNames())
}

type curveResponse struct {
	Name    string    `json:"name"`
	Samples []float64 `json:"samples"`
}

func (a *Api) handleEasingCurve(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	fn, ok := keyframe.Ease(name)
	if !ok {
		writeError(w, fmt.Errorf("%w: unknown easing %q", project.ErrNotFound, name))
		return
	}

	samples := defaultSamples
	if s := r.URL.Query().Get("samples"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 2 || n > maxSamples {
			writeError(w, fmt.Errorf("%w: samples must be between 2 and %d", keyframe.ErrInvalidArgument, maxSamples))
			return
		}
		samples = n
	}

	lut := util.GenerateLut(samples, fn)
	if r.URL.Query().Get("pingpong") == "true" {
		lut = util.GeneratePingPongLut(samples, fn)
	}
	writeJSON(w, http.StatusOK, curveResponse{Name: name, Samples: lut})
}

type presetResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Properties  []string `json:"properties"`
}

func (a *Api) handlePresets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out := []presetResponse{}
	for _, p := range preset.Search(q.Get("category"), q.Get("q")) {
		out = append(out, presetResponse{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Category:    p.Category,
			Properties:  p.Properties(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *Api) autoKey() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.project.AutoKey
}

func (a *Api) handleAddObject(w http.ResponseWriter, r *http.Request) {
	el := new(project.Element)
	if err := readJSON(r, el); err != nil {
		writeError(w, err)
		return
	}
	el.Keyframes = nil
	autoKey := a.autoKey()
	err := a.controller.Do(func(s *stream.Scene, clock *playback.Clock) error {
		return s.AddObject(el, clock.CurrentFrame(), autoKey)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (a *Api) handleRemoveObject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := a.controller.Do(func(s *stream.Scene, _ *playback.Clock) error {
		if _, ok := s.Object(id); !ok {
			return fmt.Errorf("%w: object %s", project.ErrNotFound, id)
		}
		s.RemoveObject(id)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type propertyRequest struct {
	Value keyframe.Value `json:"value"`
}

func (a *Api) handleSetProperty(w http.ResponseWriter, r *http.Request) {
	var req propertyRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	id, property := r.PathValue("id"), r.PathValue("property")
	autoKey := a.autoKey()
	err := a.controller.Do(func(s *stream.Scene, clock *playback.Clock) error {
		return s.SetProperty(id, property, req.Value, clock.CurrentFrame(), autoKey)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type keyframeRequest struct {
	Property string         `json:"property"`
	Frame    *float64       `json:"frame"`
	Value    keyframe.Value `json:"value"`
	Easing   string         `json:"easing"`
}

type keyframesResponse struct {
	Keyframes []project.Entry `json:"keyframes"`
	Markers   []float64       `json:"markers"`
}

func (a *Api) handleListKeyframes(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var out keyframesResponse
	err := a.controller.Do(func(s *stream.Scene, _ *playback.Clock) error {
		if _, ok := s.Object(id); !ok {
			return fmt.Errorf("%w: object %s", project.ErrNotFound, id)
		}
		out.Keyframes = project.Entries(s.Store(), id)
		out.Markers = s.Store().FrameMarkers(id)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *Api) handleAddKeyframe(w http.ResponseWriter, r *http.Request) {
	var req keyframeRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	id := r.PathValue("id")
	err := a.controller.Do(func(s *stream.Scene, clock *playback.Clock) error {
		if _, ok := s.Object(id); !ok {
			return fmt.Errorf("%w: object %s", project.ErrNotFound, id)
		}
		frame := clock.CurrentFrame()
		if req.Frame != nil {
			frame = *req.Frame
		}
		return s.Store().AddKeyframe(id, req.Property, frame, req.Value, req.Easing)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (a *Api) handleRemoveKeyframe(w http.ResponseWriter, r *http.Request) {
	frame, err := strconv.ParseFloat(r.PathValue("frame"), 64)
	if err != nil {
		writeError(w, fmt.Errorf("%w: bad frame %q", keyframe.ErrInvalidArgument, r.PathValue("frame")))
		return
	}
	id, property := r.PathValue("id"), r.PathValue("property")
	err = a.controller.Do(func(s *stream.Scene, _ *playback.Clock) error {
		s.Store().RemoveKeyframe(id, property, frame)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *Api) handleApplyPreset(w http.ResponseWriter, r *http.Request) {
	id, presetID := r.PathValue("id"), r.PathValue("preset")
	err := a.controller.Do(func(s *stream.Scene, clock *playback.Clock) error {
		frame := clock.CurrentFrame()
		if f := r.URL.Query().Get("frame"); f != "" {
			var err error
			if frame, err = strconv.ParseFloat(f, 64); err != nil {
				return fmt.Errorf("%w: bad frame %q", keyframe.ErrInvalidArgument, f)
			}
		}
		return s.ApplyPreset(id, presetID, frame)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (a *Api) handleListProjects(w http.ResponseWriter, r *http.Request) {
	ids, err := a.repo.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

// Save captures the live scene into the current project and stores it.
func (a *Api) Save(ctx context.Context) (*project.Project, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	err := a.controller.Do(func(s *stream.Scene, clock *playback.Clock) error {
		s.Capture(a.project)
		a.project.SetClock(clock)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := a.repo.Save(ctx, a.project); err != nil {
		return nil, err
	}
	log.Info().Str("project", a.project.ProjectID).Int("elements", len(a.project.Elements)).Msg("Project saved")
	return a.project, nil
}

func (a *Api) handleSaveProject(w http.ResponseWriter, r *http.Request) {
	p, err := a.Save(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"projectId": p.ProjectID})
}

// Load replaces the live scene with a stored project.
func (a *Api) Load(ctx context.Context, id string) ([]byte, error) {
	p, err := a.repo.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := project.Encode(p)
	if err != nil {
		return nil, err
	}
	scene, err := stream.SceneFromProject(p)
	if err != nil {
		return nil, err
	}
	clock, err := p.Clock()
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.controller.Load(scene, clock, a.transition); err != nil {
		return nil, err
	}
	a.project = p
	log.Info().Str("project", id).Msg("Project loaded")
	return data, nil
}

func (a *Api) handleLoadProject(w http.ResponseWriter, r *http.Request) {
	data, err := a.Load(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (a *Api) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := a.repo.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
