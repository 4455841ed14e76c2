// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command heaplab is a developer diagnostic tool, not the external scoring
// harness: it replays a small line-oriented script against one
// heapalloc.Allocator and reports whether every Check() along the way
// passed. Useful for reproducing a trace that a real workload produced.
//
// Script grammar, one command per line, blank lines and lines starting with
// '#' ignored:
//
//	alloc <n>          Alloc(n), assigned the next free id
//	free <id>          Free the address assigned to id
//	realloc <id> <n>   Realloc(the address assigned to id, n), re-assigned to id
//	check              run Check(), print its verdict
//	stats              print the current Stats() and free-list composition
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cznic/heapalloc"
)

func main() {
	var (
		script string
		debug  bool
	)
	flag.StringVar(&script, "script", "", "path to a trace script (default: stdin)")
	flag.BoolVar(&debug, "debug", false, "enable Allocator.Debug pointer validation")
	flag.Parse()

	in := io.Reader(os.Stdin)
	if script != "" {
		f, err := os.Open(script)
		if err != nil {
			fatal(err)
		}
		defer f.Close()
		in = f
	}

	a := heapalloc.New()
	a.SetDebug(debug)

	if err := run(a, in, os.Stdout); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "heaplab:", err)
	os.Exit(1)
}

// run drives a, reading commands from in and writing a transcript to out.
// It returns the first error that is not itself a reported check failure -
// a failing check is printed and replay continues, since the point of the
// tool is to find out how a trace goes wrong, not to stop at the first
// problem.
func run(a *heapalloc.Allocator, in io.Reader, out io.Writer) error {
	ids := map[int64]int64{} // id -> payload address
	nextID := int64(1)
	sc := bufio.NewScanner(in)
	lineNo := 0
	failed := false

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		cmd := fields[0]
		args := fields[1:]

		switch cmd {
		case "alloc":
			if len(args) != 1 {
				return fmt.Errorf("line %d: alloc wants <n>", lineNo)
			}
			size, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
			addr, err := a.Alloc(size)
			if err != nil {
				return fmt.Errorf("line %d: alloc: %w", lineNo, err)
			}
			id := nextID
			nextID++
			ids[id] = addr
			fmt.Fprintf(out, "alloc %d %d -> %#x\n", id, size, addr)

		case "free":
			if len(args) != 1 {
				return fmt.Errorf("line %d: free wants <id>", lineNo)
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
			addr, ok := ids[id]
			if !ok {
				return fmt.Errorf("line %d: unknown id %d", lineNo, id)
			}
			if err := a.Free(addr); err != nil {
				return fmt.Errorf("line %d: free: %w", lineNo, err)
			}
			delete(ids, id)
			fmt.Fprintf(out, "free %d\n", id)

		case "realloc":
			if len(args) != 2 {
				return fmt.Errorf("line %d: realloc wants <id> <n>", lineNo)
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
			addr, ok := ids[id]
			if !ok {
				return fmt.Errorf("line %d: unknown id %d", lineNo, id)
			}
			size, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
			newAddr, err := a.Realloc(addr, size)
			if err != nil {
				return fmt.Errorf("line %d: realloc: %w", lineNo, err)
			}
			ids[id] = newAddr
			fmt.Fprintf(out, "realloc %d %d -> %#x\n", id, size, newAddr)

		case "check":
			rep := a.CheckVerbose()
			if rep.OK {
				fmt.Fprintln(out, "check: ok")
				continue
			}
			failed = true
			fmt.Fprintf(out, "check: FAILED invariant=%s addr=%#x: %v\n", rep.Invariant, rep.Addr, rep.Err)

		case "stats":
			st, err := a.Stats()
			if err != nil {
				return fmt.Errorf("line %d: stats: %w", lineNo, err)
			}
			fmt.Fprintf(out, "stats: total=%d alloc=%d free=%d allocBytes=%d\n",
				st.TotalAtoms, st.AllocAtoms, st.FreeAtoms, st.AllocBytes)

			entries, err := a.FreeListReport()
			if err != nil {
				return fmt.Errorf("line %d: stats: %w", lineNo, err)
			}
			for _, e := range entries {
				fmt.Fprintf(out, "  free block at %#x, size %d\n", e.Addr, e.Size)
			}

		default:
			return fmt.Errorf("line %d: unknown command %q", lineNo, cmd)
		}
	}

	if err := sc.Err(); err != nil {
		return err
	}

	if failed {
		return fmt.Errorf("one or more check commands reported a broken heap")
	}

	return nil
}
