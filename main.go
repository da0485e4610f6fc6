package main

import "github.com/AvaProtocol/passkeys-aa/cmd"

func main() {
	cmd.Execute()
}
