package main

import "github.com/suteetoe/krist-shop/cmd/commands"

func main() {
	commands.Execute()
}
