package main

import (
	"boscoin.io/feedback/cmd/feedback/cmd"
)

func main() {
	cmd.Execute()
}
