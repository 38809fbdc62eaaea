package main

import (
	"github.com/mmwave-lab/berperf/cmd"
)

func main() {
	cmd.Execute()
}
