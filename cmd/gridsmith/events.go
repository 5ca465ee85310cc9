package main

import (
	"fmt"
	"io"
	"sync"
)

// consoleEvents prints scheduler progress to the command's writer. Workers
// report concurrently, so every write holds the mutex.
type consoleEvents struct {
	mu  sync.Mutex
	out io.Writer
}

func (e *consoleEvents) Log(message string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fmt.Fprintln(e.out, message)
}

func (e *consoleEvents) Progress(done, total int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fmt.Fprintf(e.out, "[%d/%d] processed\n", done, total)
}

func (e *consoleEvents) Preview(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fmt.Fprintf(e.out, "wrote %s\n", path)
}
