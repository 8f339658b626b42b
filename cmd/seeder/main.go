package main

import (
	"os"

	"geo-attendance-backend/internal/cli"
	"geo-attendance-backend/internal/logger"
)

func main() {
	defer logger.Sync()
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
