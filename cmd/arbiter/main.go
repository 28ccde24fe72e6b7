// Package main is the thin entrypoint around internal/bootstrap: load
// config, wire the engine, and run whatever the host wants against it
// (here, a one-shot question answered from argv). There is no HTTP/gRPC
// surface (out of scope, §1) — hosts embed internal/bootstrap directly.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/lerian-kg/kgarbiter/internal/bootstrap"
)

func main() {
	eng, err := bootstrap.NewEngine(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "kgarbiter: failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer eng.Close()
	defer func() { _ = eng.Logger.Sync() }()

	question := strings.Join(os.Args[1:], " ")
	if question == "" {
		fmt.Fprintln(os.Stderr, "usage: kgarbiter <question>")
		os.Exit(1)
	}

	ctx := context.Background()

	conclusion, err := eng.Conclude(ctx, question)
	if err != nil {
		eng.Logger.Errorf("conclude failed: %v", err)
		os.Exit(1)
	}

	fmt.Println(conclusion.Text)
}
