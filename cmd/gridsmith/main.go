package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	err := newRootCommand().Execute()
	if err == nil {
		return
	}
	// Interrupted runs already reported what they skipped.
	if !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "gridsmith: %v\n", err)
	}
	os.Exit(1)
}
