package main

import "github.com/yumyai/genemerge/cmd"

func main() {
	cmd.Execute()
}
