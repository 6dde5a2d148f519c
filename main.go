package main

import (
	_ "time/tzdata"

	"github.com/Ruscigno/StockPulse/cmd"
)

func main() {
	cmd.Execute()
}
