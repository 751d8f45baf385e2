// notectl drives a running quill server from the command line. It goes
// through the same editor controller the UI layer uses, so list order,
// selection and save semantics match what an editor sees.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"quill/internal/assist"
	"quill/internal/config"
	"quill/internal/editor"
	"quill/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := config.Load()
	client := store.NewClient(cfg.ServerURL)
	improver := assist.NewService(cfg.ServerURL)
	if cfg.AuthUser != "" {
		client.SetBasicAuth(cfg.AuthUser, cfg.AuthPass)
		improver.SetBasicAuth(cfg.AuthUser, cfg.AuthPass)
	}
	ctl := editor.NewController(client, improver, editor.Options{
		AutoSaveDelay:     cfg.AutoSaveDebounce,
		DoubleEnterWindow: cfg.DoubleEnterWindow,
		OnStatus:          printStatus,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "list":
		err = runList(ctx, ctl)
	case "create":
		err = runCreate(ctx, ctl)
	case "show":
		err = runShow(ctx, ctl, os.Args[2:])
	case "save":
		err = runSave(ctx, ctl, os.Args[2:])
	case "delete":
		err = runDelete(ctx, ctl, os.Args[2:])
	case "improve":
		err = runImprove(ctx, ctl, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: notectl <command> [flags]

commands:
  list                     list notes, newest first
  create                   create an empty note
  show <id>                print a note
  save <id> [flags]        update title/content
  delete <id> [-yes]       delete after confirmation
  improve [-text s|-file f] run the assist flow on text`)
}

func printStatus(st editor.Status) {
	if st.Kind == editor.StatusError {
		fmt.Fprintln(os.Stderr, "! "+st.Message)
	}
}

func runList(ctx context.Context, ctl *editor.Controller) error {
	if err := ctl.LoadNotes(ctx); err != nil {
		return err
	}
	for _, n := range ctl.Notes() {
		fmt.Printf("%s  %s  %s\n", n.ID, n.UpdatedAt.Local().Format("2006-01-02 15:04"), n.Title)
	}
	return nil
}

func runCreate(ctx context.Context, ctl *editor.Controller) error {
	n, err := ctl.CreateNote(ctx)
	if err != nil {
		return err
	}
	fmt.Println(n.ID)
	return nil
}

func runShow(ctx context.Context, ctl *editor.Controller, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("show: note id required")
	}
	if err := ctl.LoadNotes(ctx); err != nil {
		return err
	}
	ctl.SelectNote(args[0])
	n, ok := ctl.Selected()
	if !ok {
		return fmt.Errorf("note %s not found", args[0])
	}
	fmt.Printf("# %s\n\n%s\n", n.Title, n.Content)
	return nil
}

func runSave(ctx context.Context, ctl *editor.Controller, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("save: note id required")
	}
	fs := flag.NewFlagSet("save", flag.ExitOnError)
	title := fs.String("title", "", "note title")
	content := fs.String("content", "", "note content")
	file := fs.String("file", "", "read content from file, - for stdin")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	body := *content
	if *file != "" {
		data, err := readInput(*file)
		if err != nil {
			return err
		}
		body = data
	}
	return ctl.SaveNote(ctx, args[0], *title, body, false)
}

func runDelete(ctx context.Context, ctl *editor.Controller, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("delete: note id required")
	}
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	yes := fs.Bool("yes", false, "skip confirmation")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	// Confirmation is the caller's gate, not the controller's.
	if !*yes {
		fmt.Fprintf(os.Stderr, "delete note %s? [y/N]: ", args[0])
		reader := bufio.NewReader(os.Stdin)
		answer, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(os.Stderr, "aborted")
			return nil
		}
	}
	return ctl.DeleteNote(ctx, args[0])
}

func runImprove(ctx context.Context, ctl *editor.Controller, args []string) error {
	fs := flag.NewFlagSet("improve", flag.ExitOnError)
	text := fs.String("text", "", "text to improve")
	file := fs.String("file", "", "read text from file, - for stdin")
	if err := fs.Parse(args); err != nil {
		return err
	}
	input := *text
	if *file != "" {
		data, err := readInput(*file)
		if err != nil {
			return err
		}
		input = data
	}
	improved, err := ctl.Improve(ctx, input)
	if err != nil {
		return err
	}
	fmt.Println(improved)
	return nil
}

func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
