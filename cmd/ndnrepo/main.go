package main

import (
	"os"

	"github.com/named-data/ndnrepo/cmd"
)

func main() {
	if err := cmd.CmdNDNRepo.Execute(); err != nil {
		os.Exit(1)
	}
}
