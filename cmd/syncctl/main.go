package main

import (
	"github.com/hollowpoint-games/accountsync/internal/cli"
)

func main() {
	cli.Execute()
}
