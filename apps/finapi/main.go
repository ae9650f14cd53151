package main

import "github.com/quatton/fina/apps/finapi/cmd"

func main() {
	cmd.Execute()
}
