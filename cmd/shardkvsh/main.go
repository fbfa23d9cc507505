// Command shardkvsh is an interactive shell over a shard file
// directory: open the same layout a benchmark run wrote, then inspect
// or edit it by hand.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/peterh/liner"

	"shardkv/internal/codec"
	"shardkv/internal/config"
	"shardkv/internal/filestore"
	"shardkv/internal/logger"
)

const prompt = "shardkv> "

var commands = []string{"get", "set", "del", "keys", "stats", "flush", "help", "exit"}

func main() {
	dir := flag.String("dir", "", "Shard file directory (required)")
	fileCount := flag.Int("file-count", 8, "Shard count the directory was written with")
	serializer := flag.String("serializer", "json", "Shard file format: json | cbor")
	recoverCorrupt := flag.Bool("recover-corrupt", false, "Move undecodable shard files aside instead of failing")
	flag.Parse()

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "shardkvsh: -dir is required")
		os.Exit(1)
	}

	log := logger.New(os.Stderr, logger.LevelWarn, "[shardkvsh]")
	b, err := filestore.New(config.FileConfig{
		Dir:            *dir,
		FileCount:      *fileCount,
		Codec:          *serializer,
		RecoverCorrupt: *recoverCorrupt,
		Persist: config.PersistConfig{
			Mode:        config.PersistSync,
			FlushPeriod: time.Second,
		},
	}, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "shardkvsh: %v\n", err)
		os.Exit(1)
	}
	defer b.Close()

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(func(line string) (out []string) {
		for _, c := range commands {
			if strings.HasPrefix(c, strings.ToLower(line)) {
				out = append(out, c+" ")
			}
		}
		return
	})

	historyPath := filepath.Join(os.TempDir(), ".shardkvsh_history")
	if f, err := os.Open(historyPath); err == nil {
		ln.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyPath); err == nil {
			ln.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Printf("shardkv shell: %d shards (%s) in %s\n", *fileCount, *serializer, *dir)
	fmt.Println("Type 'help' for commands.")

	for {
		line, err := ln.Prompt(prompt)
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println()
				return
			}
			fmt.Fprintf(os.Stderr, "read: %v\n", err)
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)

		if quit := execute(b, line); quit {
			return
		}
	}
}

// execute runs one shell command, returning true on exit.
func execute(b *filestore.FileBackend, line string) bool {
	parts := strings.Fields(line)
	cmd := strings.ToLower(parts[0])

	switch cmd {
	case "exit", "quit":
		return true

	case "help":
		fmt.Println("  get <key>          print the value for a key")
		fmt.Println("  set <key> <value>  install a value")
		fmt.Println("  del <key>          remove a key")
		fmt.Println("  keys               list all keys")
		fmt.Println("  stats              per-shard key counts")
		fmt.Println("  flush              rewrite dirty shard files now")
		fmt.Println("  exit               flush and leave")

	case "get":
		if len(parts) != 2 {
			fmt.Println("usage: get <key>")
			break
		}
		v, ok, err := b.Get(parts[1])
		switch {
		case err != nil:
			fmt.Printf("error: %v\n", err)
		case !ok:
			fmt.Println("(not found)")
		default:
			fmt.Println(v)
		}

	case "set":
		if len(parts) < 3 {
			fmt.Println("usage: set <key> <value>")
			break
		}
		value := strings.Join(parts[2:], " ")
		if err := b.Set(parts[1], value); err != nil {
			fmt.Printf("error: %v\n", err)
		} else {
			fmt.Println("OK")
		}

	case "del":
		if len(parts) != 2 {
			fmt.Println("usage: del <key>")
			break
		}
		if err := b.Delete(parts[1]); err != nil {
			fmt.Printf("error: %v\n", err)
		} else {
			fmt.Println("OK")
		}

	case "keys":
		keys := b.Keys()
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Println(k)
		}
		fmt.Printf("(%d keys)\n", len(keys))

	case "stats":
		total := 0
		for i, n := range b.ShardSizes() {
			fmt.Printf("shard %d: %d keys\n", i, n)
			total += n
		}
		fmt.Printf("total: %d keys\n", total)

	case "flush":
		if err := b.Flush(); err != nil {
			fmt.Printf("error: %v\n", err)
		} else {
			fmt.Println("OK")
		}

	default:
		fmt.Printf("unknown command %q; try 'help' (codecs: %s)\n",
			cmd, strings.Join(codec.Names(), ", "))
	}
	return false
}
