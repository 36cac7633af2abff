package main

import "github.com/OwaisSafa/ChessVerse/internal/cli"

func main() {
	cli.Execute()
}
