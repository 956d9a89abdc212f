// Package shell is the interactive terminal renderer for the cart.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/shlex"

	"github.com/utafrali/minicart/internal/render"
	"github.com/utafrali/minicart/internal/store"
	apperrors "github.com/utafrali/minicart/pkg/errors"
)

// Prompt is printed before every command.
const Prompt = "minicart> "

// ErrQuit is returned by Exec for the quit command.
var ErrQuit = errors.New("quit")

const helpText = `Comandi:
  list            mostra la lista prodotti
  add <nome>      aggiunge un prodotto al carrello
  inc <nome>      incrementa la quantità di un prodotto nel carrello
  remove <nome>   rimuove un prodotto dal carrello
  cart            mostra il carrello
  clear           svuota il carrello
  help            mostra questo aiuto
  quit            esce
`

// Shell reads commands line by line and prints the resulting view.
type Shell struct {
	store     *store.CartStore
	formatter render.Formatter
	out       io.Writer
}

// New creates a shell writing to out.
func New(s *store.CartStore, f render.Formatter, out io.Writer) *Shell {
	return &Shell{store: s, formatter: f, out: out}
}

// Run executes commands from in until EOF, quit or ctx is done. Lines are
// read on a separate goroutine so cancellation ends Run while it waits for
// input; that goroutine stays blocked in in.Read until the next line or EOF.
func (sh *Shell) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines, readErr := readLines(ctx, in)
	sh.prompt()
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return fmt.Errorf("read command: %w", err)
				}
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}

			err := sh.Exec(ctx, line)
			switch {
			case errors.Is(err, ErrQuit):
				return nil
			case err != nil:
				fmt.Fprintf(sh.out, "errore: %s\n", userMessage(err))
			}
			sh.prompt()
		}
	}
}

// readLines scans in until EOF or ctx is done. The scan error, nil on a clean
// stop, is sent on the second channel before lines is closed.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		var err error
		defer func() {
			readErr <- err
			close(lines)
		}()
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		err = scanner.Err()
	}()
	return lines, readErr
}

// Exec runs a single command line. Names containing spaces can be quoted.
func (sh *Shell) Exec(ctx context.Context, line string) error {
	args, err := shlex.Split(line)
	if err != nil {
		return apperrors.InvalidInput(fmt.Sprintf("cannot parse command: %v", err))
	}
	if len(args) == 0 {
		return nil
	}

	cmd, rest := strings.ToLower(args[0]), args[1:]
	switch cmd {
	case "list", "ls":
		return render.Catalog(sh.out, sh.view())
	case "cart":
		return render.Cart(sh.out, sh.view())
	case "add":
		name, err := oneName(cmd, rest)
		if err != nil {
			return err
		}
		if _, err := sh.store.AddByName(ctx, name); err != nil {
			return err
		}
		return render.Cart(sh.out, sh.view())
	case "inc":
		name, err := oneName(cmd, rest)
		if err != nil {
			return err
		}
		sh.store.IncrementQuantity(ctx, name)
		return render.Cart(sh.out, sh.view())
	case "remove", "rm":
		name, err := oneName(cmd, rest)
		if err != nil {
			return err
		}
		sh.store.RemoveFromCart(ctx, name)
		return render.Cart(sh.out, sh.view())
	case "clear":
		sh.store.Clear(ctx)
		return render.Cart(sh.out, sh.view())
	case "help", "?":
		_, err := io.WriteString(sh.out, helpText)
		return err
	case "quit", "exit":
		return ErrQuit
	default:
		return apperrors.InvalidInput(fmt.Sprintf("unknown command %q, type help", cmd))
	}
}

func (sh *Shell) view() render.View {
	return render.FromStore(sh.formatter, sh.store)
}

func (sh *Shell) prompt() {
	_, _ = io.WriteString(sh.out, Prompt)
}

func oneName(cmd string, args []string) (string, error) {
	if len(args) != 1 {
		return "", apperrors.InvalidInput(fmt.Sprintf("usage: %s <nome>", cmd))
	}
	return args[0], nil
}

func userMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
