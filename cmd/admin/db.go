package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

func progressCmd(args []string) {
	fs := flag.NewFlagSet("progress", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "data directory")
	dbPath := fs.String("db", "", "sqlite db path (defaults to <data>/progress.db)")
	name := fs.String("name", "", "player name (omit to list all)")
	del := fs.Bool("delete", false, "delete the named player's saved progress")
	_ = fs.Parse(args)

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		path = filepath.Join(*dataDir, "progress.db")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer db.Close()

	if *del {
		if strings.TrimSpace(*name) == "" {
			fmt.Fprintln(os.Stderr, "missing -name")
			os.Exit(2)
		}
		res, err := db.Exec(`DELETE FROM progress WHERE name = ?`, *name)
		if err != nil {
			fmt.Fprintln(os.Stderr, "delete:", err)
			os.Exit(1)
		}
		n, _ := res.RowsAffected()
		fmt.Printf("deleted %d row(s)\n", n)
		return
	}

	if strings.TrimSpace(*name) != "" {
		var raw string
		err := db.QueryRow(`SELECT doc_json FROM progress WHERE name = ?`, *name).Scan(&raw)
		if err == sql.ErrNoRows {
			fmt.Fprintln(os.Stderr, "no progress for", *name)
			os.Exit(2)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		// Re-indent for the terminal; the stored form is compact.
		var doc any
		if json.Unmarshal([]byte(raw), &doc) == nil {
			if b, err := json.MarshalIndent(doc, "", "  "); err == nil {
				fmt.Println(string(b))
				return
			}
		}
		fmt.Println(raw)
		return
	}

	rows, err := db.Query(`SELECT name, updated_at FROM progress ORDER BY updated_at DESC`)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	defer rows.Close()
	for rows.Next() {
		var n, at string
		if err := rows.Scan(&n, &at); err != nil {
			fmt.Fprintln(os.Stderr, "scan:", err)
			os.Exit(1)
		}
		fmt.Printf("%s\t%s\n", n, at)
	}
	if err := rows.Err(); err != nil {
		fmt.Fprintln(os.Stderr, "rows:", err)
		os.Exit(1)
	}
}
