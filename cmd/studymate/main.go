// Command studymate is the terminal front end of the StudyMate API.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/term"

	"studymate/internal/client"
	"studymate/internal/config"
)

const usage = `usage: studymate <command> [flags] [args]

account:   register, login <username>, logout, profile, theme <light|dark>, activity
tasks:     tasks, add <title>, edit <id>, toggle <id>, rm <id>
budget:    budget, spend <description>, unspend <id>, allowance <amount>
`

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	session := client.NewSession(client.FileStore{Path: cfg.TokenFile}, func() {
		fmt.Fprintln(os.Stderr, "Your session has ended.")
	})

	app := newCLI(client.NewClient(cfg.APIURL, session, httpClient), os.Stdout, terminalPassword)
	if err := app.run(context.Background(), os.Args[1:]); err != nil {
		if errors.Is(err, client.ErrSessionExpired) {
			fmt.Fprintln(os.Stderr, "Run `studymate login <username>` to sign in.")
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// terminalPassword prompts on stderr and reads without echo when stdin is a
// terminal; piped input is read as one line.
func terminalPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}
	return readLine(os.Stdin)
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
