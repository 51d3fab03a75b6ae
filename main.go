package main

import "github.com/dbsweep/dbsweep/cmd"

func main() {
	cmd.Execute()
}
