// Command replay inspects the compressed event logs a room writes under
// <data>/rooms/<room-id>/. It prints matching events as JSON lines and
// finishes with a per-type count, which is usually enough to answer "what
// happened in that room" without spinning up a server.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"adrift.gg/internal/sim/room"
)

func main() {
	var (
		dataDir  = flag.String("data", "./data", "data directory")
		roomID   = flag.String("room", "", "room id (directory under <data>/rooms)")
		kind     = flag.String("type", "", "only events of this type (e.g. shark.death)")
		player   = flag.String("player", "", "only events whose data.player_id matches")
		fromTick = flag.Uint64("from_tick", 0, "start at tick (inclusive)")
		toTick   = flag.Uint64("to_tick", 0, "stop at tick (inclusive, 0 = no limit)")
		summary  = flag.Bool("summary", false, "suppress event lines, print only the per-type counts")
	)
	flag.Parse()

	if *roomID == "" {
		fmt.Fprintln(os.Stderr, "missing -room")
		os.Exit(2)
	}

	dir := filepath.Join(*dataDir, "rooms", *roomID)
	files, err := listEventFiles(dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list events:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no event files found in", dir)
		os.Exit(1)
	}

	counts := make(map[string]int)
	var total, matched int
	for _, path := range files {
		if err := scanFile(path, func(e room.EventLogEntry) bool {
			total++
			if e.Tick < *fromTick {
				return true
			}
			if *toTick != 0 && e.Tick > *toTick {
				return false
			}
			if *kind != "" && e.Type != *kind {
				return true
			}
			if *player != "" {
				id, _ := e.Data["player_id"].(string)
				if id != *player {
					return true
				}
			}
			matched++
			counts[e.Type]++
			if !*summary {
				b, _ := json.Marshal(e)
				fmt.Println(string(b))
			}
			return true
		}); err != nil {
			fmt.Fprintln(os.Stderr, "scan:", err)
			os.Exit(1)
		}
	}

	types := make([]string, 0, len(counts))
	for k := range counts {
		types = append(types, k)
	}
	sort.Strings(types)
	fmt.Fprintf(os.Stderr, "%d events scanned, %d matched\n", total, matched)
	for _, k := range types {
		fmt.Fprintf(os.Stderr, "  %-24s %d\n", k, counts[k])
	}
}

func listEventFiles(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "events-") && strings.HasSuffix(name, ".jsonl.zst") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}

// scanFile feeds each decoded entry to fn; fn returning false stops the file.
func scanFile(path string, fn func(room.EventLogEntry) bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)

	for sc.Scan() {
		var entry room.EventLogEntry
		if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
			return fmt.Errorf("%s: unmarshal: %w", filepath.Base(path), err)
		}
		if !fn(entry) {
			return nil
		}
	}
	return sc.Err()
}
