// Command fpudump drives an fpu.Cache from a line-oriented trace of
// cache operations and prints the emitted instruction log; the final
// table state is not printed. It exists for manual inspection and debugging of
// the cache's allocation decisions; it is not part of the dynarec
// itself.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dynarec-go/mipsfpu/fpu"
)

func main() {
	doMain(os.Stdin, os.Stdout, os.Stderr, os.Exit)
}

// doMain is separated out for the purpose of unit testing.
func doMain(stdIn io.Reader, stdOut, stdErr io.Writer, exit func(code int)) {
	flag.CommandLine.SetOutput(stdErr)

	var help bool
	var traceFile string
	var numScratch int
	flag.BoolVar(&help, "h", false, "print usage")
	flag.StringVar(&traceFile, "f", "", "trace file (default: stdin)")
	flag.IntVar(&numScratch, "scratch", fpu.DefaultNumScratch, "number of scratch slots")
	flag.Parse()

	if help {
		printUsage(stdErr)
		exit(0)
		return
	}

	in := stdIn
	if traceFile != "" {
		f, err := os.Open(traceFile)
		if err != nil {
			fmt.Fprintln(stdErr, err)
			exit(1)
			return
		}
		defer f.Close()
		in = f
	}

	emit := &fpu.RecordingEmitter{}
	guest := fpu.StaticGuest{Base: fpu.ARM64ContextBase, Scratch: numScratch}
	cache := fpu.NewCache(emit, guest, fpu.Config{NumScratch: numScratch})

	scanner := bufio.NewScanner(in)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := runLine(cache, line); err != nil {
			fmt.Fprintf(stdErr, "line %d: %v\n", lineNo, err)
			exit(1)
			return
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintln(stdErr, err)
		exit(1)
		return
	}

	for _, op := range emit.Ops {
		fmt.Fprintln(stdOut, op)
	}
	exit(0)
}

func runLine(c *fpu.Cache, line string) error {
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "start":
		c.Start()
	case "map":
		g, flags, err := parseRegFlags(args)
		if err != nil {
			return err
		}
		c.MapReg(g, flags...)
	case "qmap":
		vec, size, flags, err := parseVecFlags(args)
		if err != nil {
			return err
		}
		c.QMapReg(vec, size, flags...)
	case "flush":
		g, err := parseReg(args)
		if err != nil {
			return err
		}
		c.FlushGuest(g)
	case "discard":
		g, err := parseReg(args)
		if err != nil {
			return err
		}
		c.DiscardGuest(g)
	case "qflush":
		q, err := parseReg(args)
		if err != nil {
			return err
		}
		c.QFlush(q)
	case "flushall":
		c.FlushAll()
	case "alloc-scratch":
		c.AllocScratch()
	case "release":
		c.ReleaseLocksAndDiscardTemps()
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func parseReg(args []string) (int, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("expected a register index")
	}
	return strconv.Atoi(args[0])
}

func parseRegFlags(args []string) (int, []fpu.MapFlags, error) {
	g, err := parseReg(args)
	if err != nil {
		return 0, nil, err
	}
	return g, parseFlagWords(args[1:]), nil
}

func parseVecFlags(args []string) (int, fpu.Size, []fpu.MapFlags, error) {
	if len(args) < 2 {
		return 0, 0, nil, fmt.Errorf("expected <vec> <size>")
	}
	vec, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, nil, err
	}
	size, err := parseSize(args[1])
	if err != nil {
		return 0, 0, nil, err
	}
	return vec, size, parseFlagWords(args[2:]), nil
}

func parseSize(s string) (fpu.Size, error) {
	switch s {
	case "single":
		return fpu.Single, nil
	case "pair":
		return fpu.Pair, nil
	case "triple":
		return fpu.Triple, nil
	case "quad":
		return fpu.Quad, nil
	default:
		return 0, fmt.Errorf("unknown size %q", s)
	}
}

func parseFlagWords(words []string) []fpu.MapFlags {
	var flags []fpu.MapFlags
	for _, w := range words {
		switch w {
		case "dirty":
			flags = append(flags, fpu.Dirty)
		case "noinit":
			flags = append(flags, fpu.NoInit)
		}
	}
	return flags
}

func printUsage(stdErr io.Writer) {
	fmt.Fprintln(stdErr, "fpudump [-f trace] [-scratch N]")
	fmt.Fprintln(stdErr, "reads a line-oriented trace of fpu.Cache operations from stdin or -f")
	fmt.Fprintln(stdErr, "commands: start, map <g> [dirty] [noinit], qmap <vec> <single|pair|triple|quad> [dirty] [noinit],")
	fmt.Fprintln(stdErr, "          flush <g>, discard <g>, qflush <q>, flushall, alloc-scratch, release")
}
