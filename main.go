package main

import (
	"github.com/arvhem/beambar/internal/cmd"
)

func main() {
	cmd.Execute()
}
