package main

import "github.com/morepradnya1503/PGDAC-Project/cmd/worksphere/cmd"

func main() {
	cmd.Execute()
}
