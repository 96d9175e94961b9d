package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"
)

// readlineReader feeds the console from a line editor with history
type readlineReader struct {
	rl *readline.Instance
}

func newReadlineReader(history string) (*readlineReader, error) {
	if err := os.MkdirAll(filepath.Dir(history), 0755); err != nil {
		// No history is better than no game
		history = ""
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     history,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("cannot start line editor: %w", err)
	}
	return &readlineReader{rl: rl}, nil
}

// ReadLine returns io.EOF on ctrl-D; ctrl-C drops the current line
func (r *readlineReader) ReadLine(prompt string) (string, error) {
	r.rl.SetPrompt(prompt)
	line, err := r.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", nil
	}
	return line, err
}

func (r *readlineReader) Close() error {
	return r.rl.Close()
}
