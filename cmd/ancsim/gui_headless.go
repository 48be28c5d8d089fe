//go:build headless

package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/priyangsubanerjee/anc-simulator/internal/ui"
)

func runGUI(context.Context, options, *zap.Logger) error {
	return ui.ErrHeadless
}
