package main

import (
	"os"

	"github.com/PagodaAdmin/PagodaAdmin/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
