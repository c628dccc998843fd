package commands

import (
	"context"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"firelist/internal/exitcode"
	"firelist/internal/output"
	"firelist/internal/screen"
	"firelist/internal/service"
)

func init() {
	Register(&ProductsCmd{})
	Register(&PAddCmd{})
	Register(&PEditCmd{})
	Register(&PRmCmd{})
}

// ProductsCmd implements the products command.
type ProductsCmd struct {
	watch bool
}

// SetWatch sets watch mode (for testing).
func (c *ProductsCmd) SetWatch(watch bool) {
	c.watch = watch
}

func (c *ProductsCmd) Name() string       { return "products" }
func (c *ProductsCmd) Aliases() []string  { return nil }
func (c *ProductsCmd) Synopsis() string   { return "List products" }
func (c *ProductsCmd) Usage() string      { return "firelist products [--watch]" }
func (c *ProductsCmd) NeedsBackend() bool { return true }

func (c *ProductsCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&c.watch, "watch", "w", false, "")
}

func (c *ProductsCmd) Run(ctx context.Context, env *Env, args []string) int {
	if len(args) > 0 {
		return userError(env, "unexpected argument: %s", args[0])
	}

	if c.watch {
		return watchProducts(ctx, env)
	}

	products, err := service.First(ctx, env.Svc.WatchProducts)
	if err != nil {
		return backendError(env, "error fetching products", err, env.productsField())
	}

	if len(products) == 0 && env.Cfg.Quiet {
		return exitcode.Success
	}
	output.FormatProducts(env.Out, products)
	return exitcode.Success
}

// PAddCmd implements the padd command.
type PAddCmd struct {
	form screen.ProductForm
}

// SetForm sets the product fields (for testing).
func (c *PAddCmd) SetForm(f screen.ProductForm) {
	c.form = f
}

func (c *PAddCmd) Name() string       { return "padd" }
func (c *PAddCmd) Aliases() []string  { return nil }
func (c *PAddCmd) Synopsis() string   { return "Create a product" }
func (c *PAddCmd) Usage() string      { return "firelist padd --name <name> --type <type> --price <price>" }
func (c *PAddCmd) NeedsBackend() bool { return true }

func (c *PAddCmd) RegisterFlags(fs *pflag.FlagSet) {
	registerProductFlags(fs, &c.form)
}

func (c *PAddCmd) Run(ctx context.Context, env *Env, args []string) int {
	if len(args) > 0 {
		return userError(env, "unexpected argument: %s", args[0])
	}

	fields, alert := screen.CheckProductForm(c.form)
	if alert != nil {
		return alertError(env, alert)
	}

	id, err := env.Svc.AddProduct(ctx, fields)
	if err != nil {
		return backendError(env, "error adding product", err, env.productsField())
	}
	env.logger().Debug("product added", zap.String("id", id))

	return done(env)
}

// PEditCmd implements the pedit command.
// The draft starts from the product's current values; only flags that were
// given replace them.
type PEditCmd struct {
	form  screen.ProductForm
	flags *pflag.FlagSet
}

// SetChanges sets the flag values that override the current row (for testing).
// Empty fields are left unchanged.
func (c *PEditCmd) SetChanges(f screen.ProductForm) {
	fs := pflag.NewFlagSet(c.Name(), pflag.ContinueOnError)
	c.RegisterFlags(fs)
	for name, v := range map[string]string{"name": f.Name, "type": f.Type, "price": f.Price} {
		if v != "" {
			_ = fs.Set(name, v)
		}
	}
}

func (c *PEditCmd) Name() string       { return "pedit" }
func (c *PEditCmd) Aliases() []string  { return nil }
func (c *PEditCmd) Synopsis() string   { return "Change a product" }
func (c *PEditCmd) Usage() string      { return "firelist pedit <n> [--name <name>] [--type <type>] [--price <price>]" }
func (c *PEditCmd) NeedsBackend() bool { return true }

func (c *PEditCmd) RegisterFlags(fs *pflag.FlagSet) {
	registerProductFlags(fs, &c.form)
	c.flags = fs
}

func (c *PEditCmd) Run(ctx context.Context, env *Env, args []string) int {
	n, rest, err := ParsePosition(args)
	if err != nil {
		return userError(env, "%v", err)
	}
	if len(rest) > 0 {
		return userError(env, "unexpected argument: %s", rest[0])
	}

	p, err := itemAt(ctx, env.Svc.WatchProducts, n)
	if err != nil {
		return lookupError(env, env.productsField(), err)
	}

	draft := screen.ProductForm{Name: p.Name, Type: p.Type, Price: output.FormatPrice(p.Price)}
	if c.changed("name") {
		draft.Name = c.form.Name
	}
	if c.changed("type") {
		draft.Type = c.form.Type
	}
	if c.changed("price") {
		draft.Price = c.form.Price
	}

	fields, alert := screen.CheckProductForm(draft)
	if alert != nil {
		return alertError(env, alert)
	}

	if err := env.Svc.UpdateProduct(ctx, p.ID, fields); err != nil {
		return backendError(env, "error updating product", err,
			env.productsField(), zap.String("id", p.ID))
	}
	return done(env)
}

func (c *PEditCmd) changed(name string) bool {
	return c.flags != nil && c.flags.Changed(name)
}

// PRmCmd implements the prm command.
type PRmCmd struct{}

func (c *PRmCmd) Name() string       { return "prm" }
func (c *PRmCmd) Aliases() []string  { return nil }
func (c *PRmCmd) Synopsis() string   { return "Delete a product" }
func (c *PRmCmd) Usage() string      { return "firelist prm <n>" }
func (c *PRmCmd) NeedsBackend() bool { return true }

func (c *PRmCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *PRmCmd) Run(ctx context.Context, env *Env, args []string) int {
	n, rest, err := ParsePosition(args)
	if err != nil {
		return userError(env, "%v", err)
	}
	if len(rest) > 0 {
		return userError(env, "unexpected argument: %s", rest[0])
	}

	p, err := itemAt(ctx, env.Svc.WatchProducts, n)
	if err != nil {
		return lookupError(env, env.productsField(), err)
	}

	if err := env.Svc.DeleteProduct(ctx, p.ID); err != nil {
		return backendError(env, "error deleting product", err,
			env.productsField(), zap.String("id", p.ID))
	}
	return done(env)
}

func registerProductFlags(fs *pflag.FlagSet, f *screen.ProductForm) {
	fs.StringVar(&f.Name, "name", "", "")
	fs.StringVar(&f.Type, "type", "", "")
	fs.StringVar(&f.Price, "price", "", "")
}
