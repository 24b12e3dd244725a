package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

func roomsCmd(args []string) {
	fs := flag.NewFlagSet("rooms", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	_ = fs.Parse(args)

	u := strings.TrimRight(strings.TrimSpace(*baseURL), "/") + "/v1/rooms"
	cl := &http.Client{Timeout: 5 * time.Second}
	resp, err := cl.Get(u)
	if err != nil {
		fmt.Fprintln(os.Stderr, "request:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	fmt.Println(string(b))
	if resp.StatusCode/100 != 2 {
		os.Exit(1)
	}
}

// logsCmd lists which rooms have event logs on disk and how many files each
// accumulated, so an operator knows what cmd/replay can be pointed at.
func logsCmd(args []string) {
	fs := flag.NewFlagSet("logs", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "data directory")
	_ = fs.Parse(args)

	base := filepath.Join(*dataDir, "rooms")
	rooms, err := os.ReadDir(base)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	names := make([]string, 0, len(rooms))
	for _, e := range rooms {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		files, err := os.ReadDir(filepath.Join(base, name))
		if err != nil {
			continue
		}
		n := 0
		for _, f := range files {
			if strings.HasSuffix(f.Name(), ".jsonl.zst") {
				n++
			}
		}
		fmt.Printf("%s\t%d log files\n", name, n)
	}
}
