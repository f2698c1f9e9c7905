package world

import (
	"errors"
	"fmt"
)

// ErrAssetNotFound is returned when a model or animation is missing.
// Consumers must degrade gracefully rather than abort.
var ErrAssetNotFound = errors.New("asset not found")

// Model is a loaded (or placeholder) visual representation.
type Model struct {
	Kind        string
	Placeholder bool
}

// Animation is a loaded animation clip reference.
type Animation struct {
	ID       string
	Duration float64 // seconds
}

// AssetProvider loads models and animations. May return ErrAssetNotFound.
type AssetProvider interface {
	Model(kind string) (*Model, error)
	Animation(id string) (*Animation, error)
}

// PlaceholderModel returns the minimal stand-in visual for a kind,
// used when the real model failed to load.
func PlaceholderModel(kind string) *Model {
	return &Model{Kind: kind, Placeholder: true}
}

// Library is an in-memory AssetProvider.
type Library struct {
	models     map[string]*Model
	animations map[string]*Animation
}

// NewLibrary creates an empty asset library.
func NewLibrary() *Library {
	return &Library{
		models:     make(map[string]*Model),
		animations: make(map[string]*Animation),
	}
}

// AddModel registers a model kind as loadable.
func (l *Library) AddModel(kind string) {
	l.models[kind] = &Model{Kind: kind}
}

// AddAnimation registers an animation clip.
func (l *Library) AddAnimation(id string, duration float64) {
	l.animations[id] = &Animation{ID: id, Duration: duration}
}

// Model returns the model for a kind.
func (l *Library) Model(kind string) (*Model, error) {
	m, ok := l.models[kind]
	if !ok {
		return nil, fmt.Errorf("model %q: %w", kind, ErrAssetNotFound)
	}
	return m, nil
}

// Animation returns the animation for an id.
func (l *Library) Animation(id string) (*Animation, error) {
	a, ok := l.animations[id]
	if !ok {
		return nil, fmt.Errorf("animation %q: %w", id, ErrAssetNotFound)
	}
	return a, nil
}
