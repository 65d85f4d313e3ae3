package watcher

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestCommandProbe(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    string
		wantErr bool
	}{
		{name: "no command", command: "", want: UnknownApp},
		{name: "first line trimmed", command: "printf '  com.instagram.android \\nother\\n'", want: "com.instagram.android"},
		{name: "empty output", command: "true", want: UnknownApp},
		{name: "command fails", command: "echo denied >&2; exit 3", want: UnknownApp, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewCommandProbe(tt.command, zap.NewNop())
			got, err := p.ForegroundApp(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error state: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestState_String(t *testing.T) {
	if StatePolling.String() != "POLLING" || StateSuspended.String() != "SUSPENDED" || StateIdle.String() != "IDLE" {
		t.Fatalf("unexpected state names")
	}
}
