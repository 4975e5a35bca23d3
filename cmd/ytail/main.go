package main

import (
	"os"

	"github.com/ustclug/ytail/pkg/tailcmd"
	"github.com/ustclug/ytail/pkg/utils"
)

func main() {
	utils.CheckError(tailcmd.Execute(tailcmd.New(), os.Args[1:], os.Stdout))
}
