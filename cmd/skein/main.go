package main

import "github.com/atikulmunna/skein/internal/cmd"

func main() {
	cmd.Execute()
}
