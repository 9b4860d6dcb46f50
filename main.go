// pnc - a pipe-oriented netcat: TCP/UDP client and server that pumps
// raw bytes between a network peer and local stdio or a subprocess.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pnc/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := cmd.Execute(ctx, os.Args[1:])
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		// An interrupted session is a clean shutdown: print the bare
		// newline after ^C and exit zero.
		fmt.Fprintln(os.Stderr)
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "pnc: %v\n", err)
		os.Exit(1)
	}
}
