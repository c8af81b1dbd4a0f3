package project

import (
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/matt-g-everett/keyframer/keyframe"
	"github.com/matt-g-everett/keyframer/playback"
)

// Defaults applied to documents that omit animation settings.
const (
	DefaultDuration = 10.0
	DefaultFPS      = 30.0
	DefaultLoop     = true
)

// ErrNotFound is returned when a project ID has no stored document.
var ErrNotFound = errors.New("project not found")

// Entry is one persisted keyframe of an element.
type Entry struct {
	Frame    float64        `json:"frame"`
	Property string         `json:"property"`
	Value    keyframe.Value `json:"value"`
	Easing   string         `json:"easing,omitempty"`
}

// Element is a canvas object with its keyframes.
type Element struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Rotation    float64 `json:"rotation"`
	Opacity     float64 `json:"opacity"`
	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	Text        string  `json:"text,omitempty"`
	FontSize    float64 `json:"fontSize,omitempty"`
	FontFamily  string  `json:"fontFamily,omitempty"`
	Emoji       string  `json:"emoji,omitempty"`
	Visible     *bool   `json:"visible,omitempty"`
	Locked      bool    `json:"locked,omitempty"`
	Name        string  `json:"name,omitempty"`
	Keyframes   []Entry `json:"keyframes"`
}

// IsVisible treats a missing visibility flag as visible.
func (e *Element) IsVisible() bool {
	return e.Visible == nil || *e.Visible
}

// Project is a saved animation document.
type Project struct {
	ProjectID       string     `json:"projectId"`
	ProjectName     string     `json:"projectName"`
	CanvasWidth     int        `json:"canvasWidth"`
	CanvasHeight    int        `json:"canvasHeight"`
	BackgroundColor string     `json:"backgroundColor"`
	Elements        []*Element `json:"elements"`
	Duration        float64    `json:"duration"`
	FPS             float64    `json:"fps"`
	CurrentFrame    float64    `json:"currentFrame"`
	Loop            *bool      `json:"loop,omitempty"`
	AutoKey         bool       `json:"autoKey"`
	LastModified    time.Time  `json:"lastModified"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// NewID generates a project ID.
func NewID() string {
	return "project_" + uuid.NewString()
}

// New creates an empty project with default settings.
func New(name string) *Project {
	loop := DefaultLoop
	now := time.Now().UTC()

	p := new(Project)
	p.ProjectID = NewID()
	p.ProjectName = name
	p.CanvasWidth = 800
	p.CanvasHeight = 600
	p.BackgroundColor = "#ffffff"
	p.Elements = []*Element{}
	p.Duration = DefaultDuration
	p.FPS = DefaultFPS
	p.Loop = &loop
	p.CreatedAt = now
	p.LastModified = now
	return p
}

// Settings returns the frame rate, frame count and loop flag, filling in
// defaults for anything unset.
func (p *Project) Settings() (fps float64, totalFrames int, loop bool) {
	fps = p.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	duration := p.Duration
	if duration <= 0 {
		duration = DefaultDuration
	}
	loop = DefaultLoop
	if p.Loop != nil {
		loop = *p.Loop
	}
	return fps, playback.TotalFramesFor(duration, fps), loop
}

// Clock builds a playback clock from the project's settings, positioned at
// the saved current frame.
func (p *Project) Clock() (*playback.Clock, error) {
	fps, total, loop := p.Settings()
	c, err := playback.NewClock(total, fps, loop)
	if err != nil {
		return nil, err
	}
	c.Seek(p.CurrentFrame)
	return c, nil
}

// SetClock records the clock's settings on the project.
func (p *Project) SetClock(c *playback.Clock) {
	loop := c.Loop()
	p.FPS = c.FPS()
	p.Duration = float64(c.TotalFrames()) / c.FPS()
	p.CurrentFrame = c.CurrentFrame()
	p.Loop = &loop
}

// Restore rebuilds a keyframe store from the elements' entries.
func (p *Project) Restore() (*keyframe.Store, error) {
	store := keyframe.NewStore()
	for _, el := range p.Elements {
		for _, kf := range el.Keyframes {
			if err := store.AddKeyframe(el.ID, kf.Property, kf.Frame, kf.Value, kf.Easing); err != nil {
				return nil, fmt.Errorf("element %s: %w", el.ID, err)
			}
		}
	}
	return store, nil
}

// Capture replaces every element's entries with the contents of store.
// Entries are ordered by property, then frame.
func (p *Project) Capture(store *keyframe.Store) {
	for _, el := range p.Elements {
		el.Keyframes = Entries(store, el.ID)
	}
}

// Entries flattens one object's tracks into persisted entries.
func Entries(store *keyframe.Store, objectID string) []Entry {
	entries := []Entry{}
	for _, prop := range store.Properties(objectID) {
		for _, kf := range store.Track(objectID, prop) {
			entries = append(entries, Entry{
				Frame:    kf.Frame,
				Property: prop,
				Value:    kf.Value,
				Easing:   kf.Easing,
			})
		}
	}
	return entries
}

// Element looks up an element by ID.
func (p *Project) Element(id string) (*Element, bool) {
	for _, el := range p.Elements {
		if el.ID == id {
			return el, true
		}
	}
	return nil, false
}

// Encode serializes a project document.
func Encode(p *Project) ([]byte, error) {
	data, err := sonic.ConfigStd.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode project %s: %w", p.ProjectID, err)
	}
	return data, nil
}

// Decode parses a project document.
func Decode(data []byte) (*Project, error) {
	p := new(Project)
	if err := sonic.ConfigStd.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to decode project: %w", err)
	}
	if p.Elements == nil {
		p.Elements = []*Element{}
	}
	return p, nil
}
