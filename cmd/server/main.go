package main

import (
	"context"
	"fmt"
	"os"

	"github.com/AndrewAllenDS/prayer-request-app/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "prayerwall:", err)
		os.Exit(1)
	}
}
