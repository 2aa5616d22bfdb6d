package console

import (
	"fmt"
	"io"
	"strings"
)

var commandUsage = map[string]string{
	"load":    "load FILE...",
	"list":    "list",
	"show":    "show LABEL SEQ",
	"combine": "combine LABEL SEQ, then one 'LABEL SEQ' per line, blank line to finish",
	"output": "output [OPTIONS] LABEL SEQ [HUE]\n" +
		"output [OPTIONS] LABEL * [HUE]\n" +
		"output [OPTIONS] FILE, then one 'LABEL SEQ [HUE]' per line, blank line to finish",
	"tev":     "tev LABEL SEQ",
	"watch":   "watch FILE...",
	"unwatch": "unwatch FILE",
	"help":    "help",
	"exit":    "exit",
}

var commandOrder = []string{
	"load", "list", "show", "combine", "output", "tev", "watch", "unwatch", "help", "exit",
}

const helpText = `  load      parse scan files into the catalog
  list      list every entry with its sample count
  show      report whether an entry exists
  combine   merge entries into a new sorted entry
  output    render entries to PNG or SVG files
  tev       open an entry in the previewer
  watch     reload files when they change on disk
  unwatch   stop watching a file
  exit      leave (also end of input)`

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, helpText)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	for _, name := range commandOrder {
		for _, line := range strings.Split(commandUsage[name], "\n") {
			fmt.Fprintln(w, "  "+line)
		}
	}
}

func printUsage(w io.Writer, cmd string, s Settings) {
	text, ok := commandUsage[cmd]
	if !ok {
		printHelp(w)
		return
	}
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintln(w, "usage: "+line)
	}
	if cmd == "output" {
		fmt.Fprint(w, newOutputFlags(s).set.FlagUsages())
	}
}
