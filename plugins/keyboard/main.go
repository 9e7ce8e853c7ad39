// Package main provides a keyboard plugin for macOS.
// It types characters and sends shortcuts via AppleScript.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action string          `json:"action"`
	Event  string          `json:"event"`
	Config json.RawMessage `json:"config"`
	Params json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// TypeParams defines parameters for the type action.
type TypeParams struct {
	Char string `json:"char"`
}

// KeystrokeParams defines parameters for keystroke and shortcut actions.
type KeystrokeParams struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"` // command, option, control, shift
}

// AppleScript key codes for characters that keystroke cannot send literally.
const (
	keyCodeDelete = 51
	keyCodeReturn = 36
	keyCodeTab    = 48
)

// modifierMap maps user-friendly modifier names to AppleScript equivalents.
var modifierMap = map[string]string{
	"command": "command down",
	"cmd":     "command down",
	"option":  "option down",
	"alt":     "option down",
	"control": "control down",
	"ctrl":    "control down",
	"shift":   "shift down",
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	var script string
	var err error
	switch req.Action {
	case "type":
		script, err = typeScript(req.Params)
	case "backspace":
		script = keyCodeScript(keyCodeDelete)
	case "keystroke", "shortcut":
		script, err = keystrokeScript(req.Params)
	default:
		err = fmt.Errorf("unknown action: %s", req.Action)
	}
	if err == nil {
		err = runAppleScript(script)
	}
	if err != nil {
		writeErrorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
		return
	}

	writeSuccessResponse()
}

// typeScript builds the script that types one committed character.
func typeScript(params json.RawMessage) (string, error) {
	var p TypeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return "", fmt.Errorf("failed to parse params: %w", err)
	}

	switch p.Char {
	case "":
		return "", fmt.Errorf("char is required")
	case "\n":
		return keyCodeScript(keyCodeReturn), nil
	case "\t":
		return keyCodeScript(keyCodeTab), nil
	case "\b":
		return keyCodeScript(keyCodeDelete), nil
	}
	return fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, escape(p.Char)), nil
}

// keystrokeScript builds the script for a key with optional modifiers.
func keystrokeScript(params json.RawMessage) (string, error) {
	var p KeystrokeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return "", fmt.Errorf("failed to parse params: %w", err)
	}
	if p.Key == "" {
		return "", fmt.Errorf("key is required")
	}

	var appleModifiers []string
	for _, mod := range p.Modifiers {
		if appleMod, ok := modifierMap[strings.ToLower(mod)]; ok {
			appleModifiers = append(appleModifiers, appleMod)
		}
	}

	script := fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, escape(p.Key))
	if len(appleModifiers) > 0 {
		script += fmt.Sprintf(" using {%s}", strings.Join(appleModifiers, ", "))
	}
	return script, nil
}

func keyCodeScript(code int) string {
	return fmt.Sprintf(`tell application "System Events" to key code %d`, code)
}

// escape quotes s for use inside an AppleScript string literal.
func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: errMsg})
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse() {
	json.NewEncoder(os.Stdout).Encode(Response{Success: true})
}

// runAppleScript executes an AppleScript command and returns any error.
func runAppleScript(script string) error {
	cmd := exec.Command("osascript", "-e", script)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
