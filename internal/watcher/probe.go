package watcher

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Probe reports the identifier of the app currently in the foreground, or
// UnknownApp when it cannot tell.
type Probe interface {
	ForegroundApp(ctx context.Context) (string, error)
}

type ProbeFunc func(ctx context.Context) (string, error)

func (f ProbeFunc) ForegroundApp(ctx context.Context) (string, error) {
	return f(ctx)
}

// CommandProbe runs a shell command and reads the identifier from the first
// line of its stdout. An empty command always reports UnknownApp.
type CommandProbe struct {
	command string
	logger  *zap.Logger
}

func NewCommandProbe(command string, logger *zap.Logger) *CommandProbe {
	return &CommandProbe{
		command: strings.TrimSpace(command),
		logger:  logger,
	}
}

func (p *CommandProbe) ForegroundApp(ctx context.Context) (string, error) {
	if p.command == "" {
		return UnknownApp, nil
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "sh", "-c", p.command)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return UnknownApp, fmt.Errorf("probe command failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	line, _, _ := strings.Cut(stdout.String(), "\n")
	app := strings.TrimSpace(line)
	if app == "" {
		return UnknownApp, nil
	}

	p.logger.Debug("Probe reading", zap.String("app_identifier", app))
	return app, nil
}
