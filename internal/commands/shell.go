package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/peterh/liner"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"firelist/internal/exitcode"
	"firelist/internal/output"
	"firelist/internal/screen"
	"firelist/internal/service"
)

func init() {
	Register(&ShellCmd{})
}

// ShellCmd implements the shell command: a live screen driven by a line editor.
// Snapshots are printed as they arrive. Remote failures are logged and the
// session continues, the same way the app screens behave.
type ShellCmd struct {
	products bool
}

// SetProducts selects the product screen (for testing).
func (c *ShellCmd) SetProducts(products bool) {
	c.products = products
}

func (c *ShellCmd) Name() string       { return "shell" }
func (c *ShellCmd) Aliases() []string  { return nil }
func (c *ShellCmd) Synopsis() string   { return "Interactive live list" }
func (c *ShellCmd) Usage() string      { return "firelist shell [--products]" }
func (c *ShellCmd) NeedsBackend() bool { return true }

func (c *ShellCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&c.products, "products", false, "")
}

// liveScreen is one screen driven by the shell.
type liveScreen interface {
	mount(ctx context.Context, rendered func()) error
	exec(ctx context.Context, p Prompter, name string, args []string) (quit bool)
	help() string
}

func (c *ShellCmd) Run(ctx context.Context, env *Env, args []string) int {
	if len(args) > 0 {
		return userError(env, "unexpected argument: %s", args[0])
	}

	out := &syncWriter{w: env.Out}
	var live liveScreen
	if c.products {
		live = &productShell{s: screen.NewProductScreen(env.Svc, env.logger().With(env.productsField())), out: out}
	} else {
		live = &taskShell{s: screen.NewTaskScreen(env.Svc, env.logger().With(env.tasksField())), out: out}
	}

	p := env.prompter()
	defer p.Close()

	g, gctx := errgroup.WithContext(ctx)
	mountCtx, unmount := context.WithCancel(gctx)
	defer unmount()

	ready := make(chan struct{})
	var once sync.Once

	g.Go(func() error {
		return live.mount(mountCtx, func() { once.Do(func() { close(ready) }) })
	})

	g.Go(func() error {
		defer unmount()

		select {
		case <-ready:
		case <-gctx.Done():
			return nil
		}

		for {
			line, err := p.Prompt("> ")
			if err != nil {
				if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
					return nil
				}
				return err
			}
			if gctx.Err() != nil {
				if strings.TrimSpace(line) != "" {
					fmt.Fprintf(env.ErrOut, "error: subscription lost, command not run: %s\n", line)
				}
				return nil
			}

			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			p.AppendHistory(line)

			switch fields[0] {
			case "quit", "exit":
				return nil
			case "help":
				fmt.Fprint(out, live.help())
			default:
				if live.exec(gctx, p, fields[0], fields[1:]) {
					return nil
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		return backendError(env, "shell stopped", err)
	}
	return exitcode.Success
}

// taskShell drives a TaskScreen.
type taskShell struct {
	s   *screen.TaskScreen
	out io.Writer
}

func (t *taskShell) mount(ctx context.Context, rendered func()) error {
	return t.s.Mount(ctx, func(tasks []service.Task) {
		fmt.Fprintln(t.out)
		output.FormatTasks(t.out, tasks)
		rendered()
	})
}

func (t *taskShell) exec(ctx context.Context, p Prompter, name string, args []string) bool {
	switch name {
	case "add":
		t.s.SetInput(strings.Join(args, " "))
		printAlert(t.out, t.s.Add(ctx))
	case "edit":
		task, rest, ok := pick(t.out, t.s.Items(), args)
		if ok {
			printAlert(t.out, t.s.Update(ctx, task.ID, strings.Join(rest, " ")))
		}
	case "rm":
		task, _, ok := pick(t.out, t.s.Items(), args)
		if ok {
			t.s.Delete(ctx, task.ID)
		}
	case "ls":
		output.FormatTasks(t.out, t.s.Items())
	default:
		fmt.Fprintf(t.out, "error: unknown command: %s\n", name)
	}
	return false
}

func (t *taskShell) help() string {
	return `Commands:
  add <text...>        Create a task
  edit <n> <text...>   Change the text of task n
  rm <n>               Delete task n
  ls                   Print the current list
  help                 Print this help
  quit                 Leave the shell
`
}

// productShell drives a ProductScreen. add and edit prompt for each field.
type productShell struct {
	s   *screen.ProductScreen
	out io.Writer
}

func (ps *productShell) mount(ctx context.Context, rendered func()) error {
	return ps.s.Mount(ctx, func(products []service.Product) {
		fmt.Fprintln(ps.out)
		output.FormatProducts(ps.out, products)
		rendered()
	})
}

func (ps *productShell) exec(ctx context.Context, p Prompter, name string, args []string) bool {
	switch name {
	case "add":
		form, err := promptForm(p, screen.ProductForm{}, false)
		if err != nil {
			return true
		}
		ps.s.SetForm(form)
		printAlert(ps.out, ps.s.Add(ctx))
	case "edit":
		product, _, ok := pick(ps.out, ps.s.Items(), args)
		if !ok || !ps.s.OpenEditor(product.ID) {
			return false
		}
		return ps.edit(ctx, p)
	case "rm":
		product, _, ok := pick(ps.out, ps.s.Items(), args)
		if ok {
			ps.s.Delete(ctx, product.ID)
		}
	case "ls":
		output.FormatProducts(ps.out, ps.s.Items())
	default:
		fmt.Fprintf(ps.out, "error: unknown command: %s\n", name)
	}
	return false
}

// edit runs the editor until it is saved or cancelled.
func (ps *productShell) edit(ctx context.Context, p Prompter) bool {
	for ps.s.State() == screen.EditorOpen {
		draft, err := promptForm(p, ps.s.Draft(), true)
		if err != nil {
			ps.s.CancelEdit()
			return true
		}
		ps.s.SetDraft(draft)

		answer, err := p.Prompt("save? [Y/n] ")
		if err != nil {
			ps.s.CancelEdit()
			return true
		}
		if a := strings.ToLower(strings.TrimSpace(answer)); a == "n" || a == "no" {
			ps.s.CancelEdit()
			return false
		}

		printAlert(ps.out, ps.s.SubmitEdit(ctx))
	}
	return false
}

func (ps *productShell) help() string {
	return `Commands:
  add        Create a product (prompts for name, type, price)
  edit <n>   Change product n
  rm <n>     Delete product n
  ls         Print the current list
  help       Print this help
  quit       Leave the shell
`
}

// promptForm asks for each product field. With keep set, an empty answer
// keeps the value from f.
func promptForm(p Prompter, f screen.ProductForm, keep bool) (screen.ProductForm, error) {
	ask := func(label string, cur *string) error {
		prompt := label + ": "
		if keep {
			prompt = fmt.Sprintf("%s [%s]: ", label, *cur)
		}
		v, err := p.Prompt(prompt)
		if err != nil {
			return err
		}
		if !keep || strings.TrimSpace(v) != "" {
			*cur = v
		}
		return nil
	}

	for _, field := range []struct {
		label string
		value *string
	}{
		{"name", &f.Name},
		{"type", &f.Type},
		{"price", &f.Price},
	} {
		if err := ask(field.label, field.value); err != nil {
			return screen.ProductForm{}, err
		}
	}
	return f, nil
}

// pick resolves the position in args against the items the screen shows.
func pick[T any](out io.Writer, items []T, args []string) (T, []string, bool) {
	var zero T
	n, rest, err := ParsePosition(args)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return zero, nil, false
	}
	if n > len(items) {
		fmt.Fprintf(out, "error: %v: %d\n", ErrOutOfRange, n)
		return zero, nil, false
	}
	return items[n-1], rest, true
}

func printAlert(out io.Writer, err error) {
	var alert *screen.Alert
	if errors.As(err, &alert) {
		fmt.Fprintf(out, "%s: %s\n", alert.Title, alert.Message)
	}
}

// syncWriter serializes writes from the subscription and input goroutines.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
