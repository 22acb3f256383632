package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/logger"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const usage = `Usage: shop [flags] <command> [args]

Commands:
  list                 list products (use --store for the in-stock storefront)
  show <id>            product detail
  add <id>             add --qty units of a product to the cart
  remove <id>          take one unit out of the cart
  set <id> <qty>       set a line's quantity (0 removes it)
  clear                empty the cart
  cart                 show the cart
  checkout             place a simulated order and empty the cart

Flags:
`

var errUsage = errors.New("usage")

type options struct {
	api      string
	cartFile string
	redis    string
	redisKey string
	verbose  bool

	store      bool
	search     string
	categories []string
	minPrice   float64
	maxPrice   float64
	hasMin     bool
	hasMax     bool
	inStock    bool
	sort       string
	page       int
	pageSize   int
	qty        int
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, rest, err := parseArgs(args, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 2
	}
	if len(rest) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	if !opts.verbose {
		defer logger.Replace(logger.L().WithOptions(zap.IncreaseLevel(zapcore.WarnLevel)))()
	}
	defer logger.Sync()

	storage, closeStorage := openStorage(opts)
	defer closeStorage()

	a := newApp(catalog.NewClient(opts.api), storage, stdout, stderr)
	if err := a.exec(ctx, opts, rest[0], rest[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(stderr, usage)
			return 2
		}
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func parseArgs(args []string, stderr io.Writer) (options, []string, error) {
	var opts options

	fs := pflag.NewFlagSet("shop", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.api, "api", envOr("STOREFRONT_API_URL", catalog.DefaultBaseURL), "catalog API base URL")
	fs.StringVar(&opts.cartFile, "cart-file", defaultCartFile(), "file holding the cart between runs")
	fs.StringVar(&opts.redis, "redis", os.Getenv("REDIS_ADDR"), "keep the cart in redis at this address instead of a file")
	fs.StringVar(&opts.redisKey, "redis-key", cart.DefaultKey, "redis key of the cart")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "log at info level")

	fs.BoolVar(&opts.store, "store", false, "hide sold out products")
	fs.StringVarP(&opts.search, "search", "s", "", "match name or description")
	fs.StringSliceVarP(&opts.categories, "category", "c", nil, "category id or name, repeatable")
	fs.Float64Var(&opts.minPrice, "min-price", 0, "lowest price (default: catalog floor)")
	fs.Float64Var(&opts.maxPrice, "max-price", 0, "highest price (default: catalog ceiling)")
	fs.BoolVar(&opts.inStock, "in-stock", false, "only products with stock")
	fs.StringVar(&opts.sort, "sort", string(catalog.SortNewest), "newest, price-asc, price-desc, name-asc or name-desc")
	fs.IntVarP(&opts.page, "page", "p", 1, "page number")
	fs.IntVar(&opts.pageSize, "page-size", catalog.DefaultPageSize, "products per page")
	fs.IntVarP(&opts.qty, "qty", "q", 1, "units to add")

	fs.SetInterspersed(true)
	if err := fs.Parse(args); err != nil {
		return opts, nil, err
	}
	opts.hasMin = fs.Changed("min-price")
	opts.hasMax = fs.Changed("max-price")
	return opts, fs.Args(), nil
}

// openStorage picks the cart slot. The returned func releases it.
func openStorage(opts options) (cart.Storage, func()) {
	if opts.redis != "" {
		client := redis.NewClient(&redis.Options{Addr: opts.redis})
		return cart.NewRedisStorage(client, opts.redisKey), func() { _ = client.Close() }
	}
	return cart.NewFileStorage(opts.cartFile), func() {}
}

func defaultCartFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".storefront-cart.json"
	}
	return filepath.Join(dir, "storefront", "cart.json")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
