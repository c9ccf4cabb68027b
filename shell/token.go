package shell

import (
	"time"

	"github.com/abiosoft/ishell"
	flag "github.com/ogier/pflag"

	"github.com/inkocr/inkocr/auth"
)

func tokenCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "token",
		Help: "issue a bearer token for the http api",
		Func: func(c *ishell.Context) {
			flagSet := flag.NewFlagSet("token", flag.ContinueOnError)
			subject := flagSet.StringP("subject", "s", "inkocr", "token subject")
			ttl := flagSet.Duration("ttl", 24*time.Hour, "validity, 0 never expires")
			if err := flagSet.Parse(c.Args); err != nil {
				if err != flag.ErrHelp {
					c.Err(err)
				}
				return
			}

			token, err := auth.NewToken(ctx.Cfg.Server.TokenSecret, *subject, *ttl)
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(token)
		},
	}
}
