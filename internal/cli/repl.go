package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isUnlocked() bool
	Setup(ctx context.Context) error
	Unlock(ctx context.Context) error
	Lock(ctx context.Context) error
	List(ctx context.Context) error
	StoreFile(ctx context.Context) error
	FetchFile(ctx context.Context) error
	Delete(ctx context.Context) error
	Restore(ctx context.Context) error
	Bin(ctx context.Context) error
	Share(ctx context.Context) error
	Stats(ctx context.Context) error
	Audit(ctx context.Context) error
	Sweep(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the vault console.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Locked:   help, setup, unlock, exit | quit
// Unlocked: help, list, store, fetch, delete, restore, bin, share, stats,
//
//	audit, sweep, lock, exit | quit
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("vault> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isUnlocked() {
				printlnFn("Available commands: list, store, fetch, delete, restore, bin, share, stats, audit, sweep, lock, exit")
			} else {
				printlnFn("Available commands: setup, unlock, exit")
			}
		case "exit", "quit":
			return
		default:
			handler, ok := resolveCommand(a, cmd)
			if !ok {
				printlnFn("Unknown command, type 'help'")
				continue
			}
			if err := handler(ctx); err != nil {
				printlnFn(fmt.Sprintf("Error: %v", err))
			}
		}
	}
}

// resolveCommand maps a command word to its handler, gated on lock state.
func resolveCommand(a execIface, cmd string) (func(context.Context) error, bool) {
	if !a.isUnlocked() {
		switch cmd {
		case "setup":
			return a.Setup, true
		case "unlock":
			return a.Unlock, true
		}
		return nil, false
	}

	switch cmd {
	case "list", "l":
		return a.List, true
	case "store":
		return a.StoreFile, true
	case "fetch":
		return a.FetchFile, true
	case "delete", "rm":
		return a.Delete, true
	case "restore":
		return a.Restore, true
	case "bin":
		return a.Bin, true
	case "share":
		return a.Share, true
	case "stats":
		return a.Stats, true
	case "audit":
		return a.Audit, true
	case "sweep":
		return a.Sweep, true
	case "lock":
		return a.Lock, true
	}
	return nil, false
}
