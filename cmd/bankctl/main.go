package main

import "github.com/jrsteele09/go-bank-session/cmd/bankctl/cmd"

func main() {
	cmd.Execute()
}
