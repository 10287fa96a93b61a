package main

import (
	"fmt"
	"os"
	"time"

	"ledger-import-app/internal/presentation/di"
)

func main() {
	if err := newRootCmd(deps{newExtractor: di.NewExtractorFactory, now: time.Now}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
