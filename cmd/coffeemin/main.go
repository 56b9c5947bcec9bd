// Command coffeemin compiles CoffeeScript files and prints each one as a
// single line of minified JavaScript.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/adhocteam/coffeemin/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
