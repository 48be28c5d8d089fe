//go:build headless

// Package ui is the ebiten front end. Headless builds have no window.
package ui

import (
	"context"
	"errors"
)

// ErrHeadless is returned by Run in headless builds.
var ErrHeadless = errors.New("ui: built without window support")

// Game is a placeholder in headless builds.
type Game struct{}

// Run always fails in headless builds.
func Run(context.Context, *Game) error {
	return ErrHeadless
}
