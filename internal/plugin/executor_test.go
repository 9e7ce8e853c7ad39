package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func scriptPlugin(t *testing.T, script string) *Plugin {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	dir := writePlugin(t, t.TempDir(), "script", script, ActionType, ActionBackspace)
	return &Plugin{
		Manifest:   Manifest{Name: "script", Actions: []string{ActionType, ActionBackspace}},
		Path:       dir,
		Executable: filepath.Join(dir, "run.sh"),
	}
}

func TestExecutor_Execute(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		wantErr string
		check   func(t *testing.T, resp *Response)
	}{
		{
			name: "success",
			script: `#!/bin/sh
echo '{"success":true,"data":{"typed":"a"}}'
`,
			check: func(t *testing.T, resp *Response) {
				if !resp.Success || resp.Error != "" {
					t.Errorf("unexpected response %+v", resp)
				}
				if string(resp.Data) != `{"typed":"a"}` {
					t.Errorf("unexpected data %s", resp.Data)
				}
			},
		},
		{
			name: "plugin reported failure",
			script: `#!/bin/sh
echo '{"success":false,"error":"no accessibility permission"}'
`,
			check: func(t *testing.T, resp *Response) {
				if resp.Success || resp.Error != "no accessibility permission" {
					t.Errorf("unexpected response %+v", resp)
				}
			},
		},
		{
			name: "non-zero exit includes stderr",
			script: `#!/bin/sh
echo "osascript missing" >&2
exit 3
`,
			wantErr: "osascript missing",
		},
		{
			name: "invalid output",
			script: `#!/bin/sh
echo "typed it"
`,
			wantErr: "failed to parse plugin response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plugin := scriptPlugin(t, tt.script)

			resp, err := NewExecutor(5000).Execute(plugin, &Request{Action: ActionType, Event: "commit"})
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Execute() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Execute() failed: %v", err)
			}
			tt.check(t, resp)
		})
	}
}

func TestExecutor_Execute_ReadsStdin(t *testing.T) {
	// The script echoes its stdin back as the response data.
	plugin := scriptPlugin(t, `#!/bin/sh
input=$(cat)
printf '{"success":true,"data":%s}' "$input"
`)

	req := &Request{
		Action: ActionType,
		Event:  "commit",
		Config: json.RawMessage(`{"app":"TextEdit"}`),
		Params: json.RawMessage(`{"char":"Q"}`),
	}

	resp, err := NewExecutor(5000).Execute(plugin, req)
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	var received Request
	if err := json.Unmarshal(resp.Data, &received); err != nil {
		t.Fatalf("failed to unmarshal echoed request: %v", err)
	}
	if received.Action != ActionType || received.Event != "commit" {
		t.Errorf("unexpected request %+v", received)
	}
	if string(received.Params) != `{"char":"Q"}` || string(received.Config) != `{"app":"TextEdit"}` {
		t.Errorf("unexpected params/config %s %s", received.Params, received.Config)
	}
}

func TestExecutor_Timeout(t *testing.T) {
	plugin := scriptPlugin(t, `#!/bin/sh
sleep 5
echo '{"success":true}'
`)

	start := time.Now()
	_, err := NewExecutor(100).Execute(plugin, &Request{Action: ActionType})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Execute() error = %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("timeout took %v", elapsed)
	}
}

func TestExecutor_Canceled(t *testing.T) {
	plugin := scriptPlugin(t, `#!/bin/sh
sleep 5
`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExecutor(5000).ExecuteContext(ctx, plugin, &Request{Action: ActionType})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ExecuteContext() error = %v, want context.Canceled", err)
	}
}

func TestExecutor_MissingExecutable(t *testing.T) {
	plugin := &Plugin{
		Manifest:   Manifest{Name: "ghost"},
		Path:       t.TempDir(),
		Executable: filepath.Join(t.TempDir(), "nope"),
	}

	if _, err := NewExecutor(1000).Execute(plugin, &Request{Action: ActionType}); err == nil {
		t.Error("expected error for missing executable")
	}
}
