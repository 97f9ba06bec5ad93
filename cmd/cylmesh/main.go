// Command cylmesh writes a capped cylinder mesh as an OBJ or STL file.
//
//	cylmesh 32 2 0.5 -o wheel.obj
package main

import (
	"os"

	"github.com/soypat/cylmesh/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
