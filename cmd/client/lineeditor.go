package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"golang.org/x/term"
)

const (
	historyFileName = ".line_chat_history"
	historySize     = 500
)

// lineEditor reads REPL input. On a terminal it uses readline with history;
// with piped input it falls back to a plain scanner.
type lineEditor struct {
	interactive bool
	rl          *readline.Instance
	scanner     *bufio.Scanner
}

func newLineEditor(in *os.File) *lineEditor {
	if !term.IsTerminal(int(in.Fd())) {
		return &lineEditor{scanner: bufio.NewScanner(in)}
	}

	rl, err := readline.NewFromConfig(&readline.Config{
		HistoryFile:            historyPath(),
		HistoryLimit:           historySize,
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline unavailable (%v), using basic input\n", err)
		return &lineEditor{scanner: bufio.NewScanner(in)}
	}
	return &lineEditor{interactive: true, rl: rl}
}

// getLine returns the next input line, or io.EOF on Ctrl-D, Ctrl-C or end of
// piped input.
func (le *lineEditor) getLine(prompt string) (string, error) {
	if le.interactive {
		le.rl.SetPrompt(prompt)
		line, err := le.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				return "", io.EOF
			}
			return "", err
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			le.rl.SaveToHistory(trimmed)
		}
		return line, nil
	}

	if !le.scanner.Scan() {
		if err := le.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return le.scanner.Text(), nil
}

// output returns the writer for text printed while a prompt may be showing.
// On a terminal readline redraws the prompt and pending input after each
// write.
func (le *lineEditor) output() io.Writer {
	if le.interactive {
		return le.rl.Stdout()
	}
	return os.Stdout
}

func (le *lineEditor) close() {
	if le.rl != nil {
		le.rl.Close()
		le.rl = nil
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return historyFileName
	}
	return filepath.Join(home, historyFileName)
}
