package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/logger"
	"storefront/internal/product"
	"storefront/internal/storefront"
)

type app struct {
	session *storefront.Session
	out     io.Writer
	errOut  io.Writer
}

func newApp(gw catalog.Gateway, storage cart.Storage, out, errOut io.Writer) *app {
	engine := cart.New(storage, cart.WithLogger(logger.L()))
	return &app{
		session: storefront.NewSession(gw, engine),
		out:     out,
		errOut:  errOut,
	}
}

func (a *app) exec(ctx context.Context, opts options, cmd string, args []string) error {
	var err error
	switch cmd {
	case "list":
		err = a.list(ctx, opts)
	case "show":
		if len(args) != 1 {
			return errUsage
		}
		err = a.show(ctx, args[0])
	case "add":
		if len(args) != 1 {
			return errUsage
		}
		err = a.add(ctx, args[0], opts.qty)
	case "remove":
		if len(args) != 1 {
			return errUsage
		}
		a.session.Cart().RemoveFromCart(args[0])
		err = a.printCart()
	case "set":
		if len(args) != 2 {
			return errUsage
		}
		qty, convErr := strconv.Atoi(args[1])
		if convErr != nil {
			return fmt.Errorf("quantity %q: %w", args[1], convErr)
		}
		a.session.Cart().UpdateQuantity(args[0], qty)
		a.printNotice()
		err = a.printCart()
	case "clear":
		a.session.Cart().ClearCart()
		fmt.Fprintln(a.out, "Cart cleared.")
	case "cart":
		err = a.printCart()
	case "checkout":
		err = a.checkout(ctx)
	default:
		return errUsage
	}

	if !a.session.Cart().Persistent() {
		fmt.Fprintln(a.errOut, "warning: cart could not be saved, changes are lost on exit")
	}
	return err
}

func (a *app) list(ctx context.Context, opts options) error {
	if err := a.session.LoadCatalog(ctx); err != nil {
		return err
	}

	spec := a.session.DefaultFilter()
	spec.SearchQuery = opts.search
	spec.InStockOnly = opts.inStock
	spec.Sort = catalog.SortOrder(opts.sort)
	spec.Page = opts.page
	spec.PageSize = opts.pageSize
	if opts.hasMin {
		spec.PriceMin = opts.minPrice
	}
	if opts.hasMax {
		spec.PriceMax = opts.maxPrice
	}
	if len(opts.categories) > 0 {
		ids, err := a.resolveCategories(opts.categories)
		if err != nil {
			return err
		}
		spec.CategoryIDs = ids
	}

	var page catalog.Page
	if opts.store {
		page = a.session.Storefront(spec)
	} else {
		page = a.session.Browse(spec)
	}

	if page.TotalCount == 0 {
		fmt.Fprintln(a.out, "No products match.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK")
	for _, p := range page.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%s\n", p.ID, p.Name, p.Category.Name, p.Price, stockLabel(p))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Page %d of %d (%d products)\n", page.Page, page.PageCount(), page.TotalCount)
	return nil
}

// resolveCategories accepts ids or case-insensitive names.
func (a *app) resolveCategories(refs []string) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref == catalog.AllCategories {
			return []string{catalog.AllCategories}, nil
		}
		found := false
		for _, c := range a.session.Categories() {
			if c.ID == ref || strings.EqualFold(c.Name, ref) {
				ids = append(ids, c.ID)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown category %q", ref)
		}
	}
	return ids, nil
}

func (a *app) show(ctx context.Context, id string) error {
	p, err := a.session.Product(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s\n", p.Name)
	fmt.Fprintf(a.out, "  id:       %s\n", p.ID)
	fmt.Fprintf(a.out, "  category: %s\n", p.Category.Name)
	fmt.Fprintf(a.out, "  price:    %.2f\n", p.Price)
	fmt.Fprintf(a.out, "  stock:    %s\n", stockLabel(*p))
	if p.Description != "" {
		fmt.Fprintf(a.out, "\n%s\n", p.Description)
	}
	if in, ok := a.session.Cart().Item(p.ID); ok {
		fmt.Fprintf(a.out, "\nIn cart: %d\n", in.Quantity)
	}
	return nil
}

func (a *app) add(ctx context.Context, id string, qty int) error {
	if qty < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}
	p, err := a.session.Product(ctx, id)
	if err != nil {
		return err
	}
	if p.Stock <= 0 {
		return fmt.Errorf("%s is out of stock", p.Name)
	}

	added := a.session.AddQuantity(*p, qty)
	fmt.Fprintf(a.out, "Added %d x %s.\n", added, p.Name)
	a.printNotice()
	return a.printCart()
}

func (a *app) checkout(ctx context.Context) error {
	r, err := a.session.Checkout(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Order %s placed.\n", r.OrderID)
	if err := a.printItems(r.Items); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Total: %d items, %.2f\n", r.TotalItems, r.TotalPrice)
	return nil
}

func (a *app) printNotice() {
	if n, ok := a.session.Cart().TakeNotice(); ok {
		fmt.Fprintln(a.errOut, n.Message)
	}
}

func (a *app) printCart() error {
	st := a.session.Cart().State()
	if len(st.Items) == 0 {
		_, err := fmt.Fprintln(a.out, "Cart is empty.")
		return err
	}
	if err := a.printItems(st.Items); err != nil {
		return err
	}
	_, err := fmt.Fprintf(a.out, "Total: %d items, %.2f\n", st.TotalItems, st.TotalPrice)
	return err
}

func (a *app) printItems(items []cart.LineItem) error {
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE\tTOTAL")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f\t%.2f\n", it.ProductID, it.Name, it.Quantity, it.Price, it.LineTotal)
	}
	return tw.Flush()
}

func stockLabel(p product.Product) string {
	if p.Stock <= 0 {
		return "sold out"
	}
	return strconv.Itoa(p.Stock)
}
