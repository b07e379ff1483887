package main

import (
	"github.com/modlog/modlog/internal/cmd"
)

func main() {
	cmd.Execute()
}
