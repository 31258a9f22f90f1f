package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/suparena/itemstore"
	"github.com/suparena/itemstore/storagemodels"
)

var (
	versionFlag = flag.Bool("version", false, "Show version information")
	vFlag       = flag.Bool("v", false, "Show version information (short)")
)

func main() {
	flag.Parse()

	if *versionFlag || *vFlag {
		info := itemstore.GetVersionInfo()
		fmt.Printf("ItemStore schemacheck version %s\n", info.Version)
		fmt.Printf("Git commit: %s\n", info.GitCommit)
		fmt.Printf("Build date: %s\n", info.BuildDate)
		fmt.Printf("Go version: %s\n", info.GoVersion)
		os.Exit(0)
	}

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: schemacheck [-version] <schema.yaml> ...")
		os.Exit(2)
	}

	failed := false
	for _, path := range flag.Args() {
		schema, err := storagemodels.LoadTypeSchema(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed = true
			continue
		}
		fmt.Printf("%s: type %q, %d field(s)\n", path, schema.TypeName, len(schema.Fields))
		for _, f := range schema.EncryptedFields() {
			fmt.Printf("  encrypted: %s\n", f)
		}
	}
	if failed {
		os.Exit(1)
	}
}
