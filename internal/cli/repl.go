package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"docqna/pkg/chat"
	"docqna/pkg/transcript"
)

const replPrompt = `Input current user message (type "quit" to exit): `

// runREPL drives the question-answering loop. Ask failures are printed and
// the loop continues; only a broken input stream ends it with an error.
func runREPL(ctx context.Context, in io.Reader, out io.Writer, session *chat.Session, transcriptsDir string) error {
	if greeting := session.DefaultMessage(); greeting != "" && session.VisibleTurns() == 0 {
		fmt.Fprintln(out, greeting)
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(out, replPrompt)
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()

		if line == "quit" {
			return nil
		}
		if trimmed := strings.TrimSpace(line); strings.HasPrefix(trimmed, "!") {
			if err := runMeta(out, session, transcriptsDir, trimmed); err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
			}
			continue
		}

		reply, err := session.Ask(ctx, line)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		fmt.Fprintln(out, reply)
	}

	return scanner.Err()
}

func runMeta(out io.Writer, session *chat.Session, transcriptsDir, line string) error {
	fields := strings.Fields(line)

	switch fields[0] {
	case "!history":
		printHistory(out, session)
		return nil

	case "!restart":
		if len(fields) != 2 {
			return fmt.Errorf("usage: !restart N (see !history for indices)")
		}
		index, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("usage: !restart N (see !history for indices)")
		}
		if err := session.RestartFromIndex(index); err != nil {
			return err
		}
		fmt.Fprintf(out, "Conversation restarted from turn %d.\n", index)
		return nil

	case "!save":
		var path string
		if len(fields) > 1 {
			path = fields[1]
		}
		saved, err := saveTranscript(session, transcriptsDir, path)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Transcript saved to %s\n", saved)
		return nil

	default:
		return fmt.Errorf("unknown command %s (available: !history, !restart N, !save [PATH])", fields[0])
	}
}

// printHistory numbers the user-visible turns the way RestartFromIndex
// counts them, so the printed indices can be passed to !restart directly.
func printHistory(out io.Writer, session *chat.Session) {
	history := session.History()
	visible := history[len(history)-session.VisibleTurns():]
	if len(visible) == 0 {
		fmt.Fprintln(out, "No conversation turns yet.")
		return
	}
	for i, turn := range visible {
		fmt.Fprintf(out, "%3d  %-9s  %s\n", i+1, turn.Role, turn.Content)
	}
}

func saveTranscript(session *chat.Session, transcriptsDir, path string) (string, error) {
	if path == "" {
		name, err := transcript.DefaultFilename()
		if err != nil {
			return "", err
		}
		path = filepath.Join(transcriptsDir, name)
	}
	if err := transcript.Save(path, session.SaveChat()); err != nil {
		return "", err
	}
	return path, nil
}
