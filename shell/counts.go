package shell

import (
	"github.com/abiosoft/ishell"
)

func countsCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "counts",
		Help: "number of samples per character",
		Func: func(c *ishell.Context) {
			counts := ctx.Service.Counts()
			if ctx.JSONOutput {
				if err := displayJSON(c, counts); err != nil {
					c.Err(err)
				}
				return
			}
			for _, l := range ctx.Service.Characters() {
				c.Printf("%s\t%d\n", l, counts[l])
			}
			_, msg := ctx.Service.Store().Readiness()
			c.Printf("%d samples, %d characters. %s\n", ctx.Service.Store().Len(), len(counts), msg)
		},
	}
}
