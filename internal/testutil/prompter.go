package testutil

import (
	"io"
	"sync"
)

// ScriptedPrompter answers prompts from a fixed list of lines.
// Once the lines run out every prompt returns io.EOF, like Ctrl-D in a terminal.
type ScriptedPrompter struct {
	mu      sync.Mutex
	lines   []string
	prompts []string
	history []string
	closed  bool
}

// NewScriptedPrompter creates a prompter that replays lines in order.
func NewScriptedPrompter(lines ...string) *ScriptedPrompter {
	return &ScriptedPrompter{lines: lines}
}

// Prompt returns the next scripted line.
func (p *ScriptedPrompter) Prompt(prompt string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.prompts = append(p.prompts, prompt)
	if len(p.lines) == 0 {
		return "", io.EOF
	}
	line := p.lines[0]
	p.lines = p.lines[1:]
	return line, nil
}

// PasswordPrompt returns the next scripted line.
func (p *ScriptedPrompter) PasswordPrompt(prompt string) (string, error) {
	return p.Prompt(prompt)
}

// AppendHistory records a history entry.
func (p *ScriptedPrompter) AppendHistory(item string) {
	p.mu.Lock()
	p.history = append(p.history, item)
	p.mu.Unlock()
}

// Close marks the prompter closed.
func (p *ScriptedPrompter) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

// Prompts returns every prompt shown so far.
func (p *ScriptedPrompter) Prompts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.prompts...)
}

// History returns the lines added to history.
func (p *ScriptedPrompter) History() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.history...)
}

// Closed reports whether Close was called.
func (p *ScriptedPrompter) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
