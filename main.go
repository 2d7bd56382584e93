package main

import (
	"os"

	"github.com/abhisek/quizquest/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
