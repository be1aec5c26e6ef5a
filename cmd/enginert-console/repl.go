package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/Voskan/enginert/pkg/bus"
	"github.com/Voskan/enginert/pkg/hashreg"
	"github.com/Voskan/enginert/pkg/resource"
)

// REPL is the interactive command loop, grounded on cmd/sloty's liner
// wiring (history file, Ctrl-C abort, command completer).
type REPL struct {
	bus     *bus.Bus
	factory *resource.Factory
	hash    *hashreg.Registry

	sockets map[string]bus.Handle
	liner   *liner.State
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".enginert_console_history")
}

func (r *REPL) Run() error {
	r.sockets = make(map[string]bus.Handle)
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(r.completer)

	if f, err := os.Open(historyFile()); err == nil {
		r.liner.ReadHistory(f)
		f.Close()
	}

	fmt.Println("enginert-console - engine debug shell")
	fmt.Println("Type 'help' for available commands.")
	fmt.Println()

	for {
		line, err := r.liner.Prompt("enginert> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println("\nBye!")
				break
			}
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.liner.AppendHistory(line)

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "exit", "quit", "q":
			r.saveHistory()
			return nil
		case "help", "?":
			r.printHelp()
		case "socket":
			r.cmdSocket(args)
		case "post":
			r.cmdPost(args)
		case "dispatch":
			r.cmdDispatch(args)
		case "raw":
			r.cmdRaw(args)
		case "reload":
			r.cmdReload(args)
		case "len":
			fmt.Printf("Live resources: %d\n", r.factory.Len())
		case "hash":
			r.cmdHash(args)
		case "clear", "cls":
			fmt.Print("\033[H\033[2J")
		default:
			fmt.Printf("Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}

	r.saveHistory()
	return nil
}

func (r *REPL) saveHistory() {
	if path := historyFile(); path != "" {
		if f, err := os.Create(path); err == nil {
			r.liner.WriteHistory(f)
			f.Close()
		}
	}
}

func (r *REPL) completer(line string) []string {
	commands := []string{
		"socket", "post", "dispatch", "raw", "reload",
		"len", "hash", "clear", "cls", "help", "exit", "quit", "q",
	}
	var out []string
	lower := strings.ToLower(line)
	for _, c := range commands {
		if strings.HasPrefix(c, lower) {
			out = append(out, c)
		}
	}
	return out
}

func (r *REPL) printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  socket new <name>              Create a socket")
	fmt.Println("  socket get <name>               Resolve a socket by name")
	fmt.Println("  socket del <name>               Delete a socket")
	fmt.Println("  socket valid <name>             Check a cached handle is still valid")
	fmt.Println("  post <socket> <text>            Post a text payload to a socket")
	fmt.Println("  dispatch <socket>               Drain and print a socket's queue")
	fmt.Println("  raw <path>                      Fetch a resource's raw bytes")
	fmt.Println("  reload <path>                   Force-reload a loaded resource")
	fmt.Println("  len                             Count live resources")
	fmt.Println("  hash <string>                   Print the 32/64-bit hash of a string")
	fmt.Println("  exit / quit / q                 Exit")
}

func (r *REPL) cmdSocket(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: socket <new|get|del|valid> <name>")
		return
	}
	sub, name := args[0], args[1]
	switch sub {
	case "new":
		h, err := r.bus.NewSocket(name)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		r.sockets[name] = h
		fmt.Printf("OK: created socket %q (handle=%#x)\n", name, uint32(h))
	case "get":
		h, err := r.bus.GetSocket(name)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		r.sockets[name] = h
		fmt.Printf("Handle: %#x\n", uint32(h))
	case "del":
		h, ok := r.sockets[name]
		if !ok {
			fmt.Println("Unknown socket (try 'socket get' first)")
			return
		}
		if err := r.bus.DeleteSocket(h); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		delete(r.sockets, name)
		fmt.Printf("OK: deleted %q\n", name)
	case "valid":
		h, ok := r.sockets[name]
		if !ok {
			fmt.Println("Unknown socket (try 'socket get' first)")
			return
		}
		fmt.Printf("Valid: %v\n", r.bus.IsSocketValid(h))
	default:
		fmt.Println("Usage: socket <new|get|del|valid> <name>")
	}
}

func (r *REPL) cmdPost(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: post <socket> <text...>")
		return
	}
	name := args[0]
	h, ok := r.sockets[name]
	if !ok {
		var err error
		h, err = r.bus.GetSocket(name)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		r.sockets[name] = h
	}

	payload := []byte(strings.Join(args[1:], " "))
	receiver := bus.URL{Socket: h}
	if err := r.bus.Post(bus.URL{}, receiver, 0, 0, nil, payload); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println("OK: posted")
}

func (r *REPL) cmdDispatch(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: dispatch <socket>")
		return
	}
	h, ok := r.sockets[args[0]]
	if !ok {
		fmt.Println("Unknown socket (try 'socket get' first)")
		return
	}

	n, err := r.bus.Dispatch(h, func(msg *bus.Message) {
		fmt.Printf("  msg id=%d payload=%q\n", msg.ID, string(msg.Payload))
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Dispatched %d message(s)\n", n)
}

func (r *REPL) cmdRaw(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: raw <path>")
		return
	}
	buf, err := r.factory.GetRaw(context.Background(), args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("%d bytes\n", len(buf))
}

func (r *REPL) cmdReload(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: reload <path>")
		return
	}
	if err := r.factory.ReloadResource(context.Background(), args[0]); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println("OK: reloaded")
}

func (r *REPL) cmdHash(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: hash <string>")
		return
	}
	s := strings.Join(args, " ")
	h32 := hashreg.String32(r.hash, s)
	h64 := hashreg.String64(r.hash, s)
	fmt.Printf("hash32: 0x%08x\n", h32)
	fmt.Printf("hash64: 0x%016x\n", h64)
}
