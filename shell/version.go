package shell

import (
	"github.com/abiosoft/ishell"

	"github.com/inkocr/inkocr/version"
)

func versionCmd() *ishell.Cmd {
	return &ishell.Cmd{
		Name: "version",
		Help: "show version",
		Func: func(c *ishell.Context) {
			c.Println(version.Version)
		},
	}
}
