package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/angelmondragon/cartsync/internal/cart"
)

const helpText = `commands:
  add <id> [name...]   add one unit of a product
  qty <id> <n>         set the quantity (0 removes)
  toggle <id>          select or unselect a line
  all                  toggle select all
  delete               delete selected lines
  clear                empty the cart
  show                 print the cart
  flush                push pending changes now
  reload               load the cart from the server
  quit                 save and exit`

type cartEngine interface {
	Load(ctx context.Context) error
	AddItem(product cart.Product) error
	UpdateQuantity(id cart.ProductID, quantity int) error
	ToggleItemSelection(id cart.ProductID) error
	ToggleSelectAll() error
	DeleteSelectedItems(ctx context.Context) error
	ClearCart(ctx context.Context) error
	Flush(ctx context.Context) error
	Item(id cart.ProductID) (cart.Item, bool)
	Snapshot() cart.Snapshot
}

type shell struct {
	engine cartEngine
	in     *bufio.Scanner
	out    io.Writer
}

func newShell(engine cartEngine, in io.Reader, out io.Writer) *shell {
	return &shell{engine: engine, in: bufio.NewScanner(in), out: out}
}

// run reads commands until quit, EOF or ctx is done.
func (s *shell) run(ctx context.Context) error {
	fmt.Fprintln(s.out, `type "help" for commands`)
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(s.out, "> ")
		if !s.in.Scan() {
			return s.in.Err()
		}
		quit, err := s.execute(ctx, s.in.Text())
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

func (s *shell) execute(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	args := fields[1:]

	switch strings.ToLower(fields[0]) {
	case "help", "?":
		fmt.Fprintln(s.out, helpText)
	case "add":
		if len(args) == 0 {
			return false, fmt.Errorf("usage: add <id> [name...]")
		}
		id := cart.ProductID(args[0])
		product := cart.Product{ID: id, Name: strings.Join(args[1:], " ")}
		if item, ok := s.engine.Item(id); ok {
			product = item.Product
		}
		return false, s.engine.AddItem(product)
	case "qty":
		if len(args) != 2 {
			return false, fmt.Errorf("usage: qty <id> <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return false, fmt.Errorf("quantity must be a number")
		}
		return false, s.engine.UpdateQuantity(cart.ProductID(args[0]), n)
	case "toggle":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: toggle <id>")
		}
		return false, s.engine.ToggleItemSelection(cart.ProductID(args[0]))
	case "all":
		return false, s.engine.ToggleSelectAll()
	case "delete":
		return false, s.engine.DeleteSelectedItems(ctx)
	case "clear":
		return false, s.engine.ClearCart(ctx)
	case "flush":
		return false, s.engine.Flush(ctx)
	case "reload":
		return false, s.engine.Load(ctx)
	case "show":
		s.print(s.engine.Snapshot())
	case "quit", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q", fields[0])
	}
	return false, nil
}

func (s *shell) print(snap cart.Snapshot) {
	selected := make(map[cart.ProductID]bool, len(snap.Selected))
	for _, id := range snap.Selected {
		selected[id] = true
	}

	fmt.Fprintf(s.out, "cart (%s), %d items\n", snap.State, snap.TotalItems)
	for _, item := range snap.Items {
		mark := " "
		if selected[item.ProductID] {
			mark = "x"
		}
		name := item.Product.Name
		if name == "" {
			name = string(item.ProductID)
		}
		price := item.OriginalPrice.StringFixed(2)
		if item.DiscountedPrice.Valid {
			price = fmt.Sprintf("%s (was %s)", item.DiscountedPrice.Decimal.StringFixed(2), price)
		}
		fmt.Fprintf(s.out, "[%s] %-6s %-24s x%-3d %s\n", mark, item.ProductID, name, item.Quantity, price)
	}

	sum := snap.Summary
	status := ""
	if snap.SummaryStale {
		status = " (updating)"
	}
	fmt.Fprintf(s.out, "subtotal %s  discount %s  total %s%s\n",
		sum.Subtotal.StringFixed(2), sum.DiscountAmount.StringFixed(2), sum.FinalTotal.StringFixed(2), status)
	if sum.AppliedRule != "" {
		fmt.Fprintf(s.out, "applied: %s\n", sum.AppliedRule)
	}
	if sum.UpsellHint != "" {
		fmt.Fprintf(s.out, "hint: %s\n", sum.UpsellHint)
	}
}
