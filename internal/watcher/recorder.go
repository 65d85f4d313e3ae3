package watcher

import "context"

// Recorder persists an emitted break. It must be durable before returning nil,
// and must return ErrAlreadyRecorded for a Break.ID it has already stored.
type Recorder interface {
	RecordBreak(ctx context.Context, b Break) error
}

type RecorderFunc func(ctx context.Context, b Break) error

func (f RecorderFunc) RecordBreak(ctx context.Context, b Break) error {
	return f(ctx, b)
}
