package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/flashcore/elegancekv/engine"
)

// DB is the surface the engine package implements; kept here as the
// teacher's original interface shape so callers depend on the contract,
// not the concrete engine.DB type.
type DB interface {
	Put(key, value []byte) error
	Get(key []byte) ([]byte, error)
	Delete(key []byte) error
	Close() error
}

var _ DB = (*engine.DB)(nil)

type Command int

const (
	CommandUnknown Command = iota
	CommandInsert
	CommandUpdate
	CommandDelete
)

func main() {
	dir := flag.String("dir", "elegancekv-data", "data directory")
	flag.Parse()

	db, err := engine.Open(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "elegancekv: open %s: %v\n", *dir, err)
		os.Exit(1)
	}
	defer db.Close()
}
