package shell

import (
	"strings"

	"github.com/abiosoft/ishell"
)

type statusJSON struct {
	Status     string   `json:"status"`
	Progress   float64  `json:"progress"`
	Samples    int      `json:"samples"`
	Characters []string `json:"characters"`
	Model      []string `json:"model,omitempty"`
	Ready      bool     `json:"ready"`
	Message    string   `json:"message"`
}

func statusCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "status",
		Help: "training status of the model",
		Func: func(c *ishell.Context) {
			svc := ctx.Service
			ready, msg := svc.Store().Readiness()
			st := statusJSON{
				Status:     string(svc.Status()),
				Progress:   svc.Progress(),
				Samples:    svc.Store().Len(),
				Characters: svc.Characters(),
				Model:      svc.ModelCharacters(),
				Ready:      ready,
				Message:    msg,
			}
			if ctx.JSONOutput {
				if err := displayJSON(c, st); err != nil {
					c.Err(err)
				}
				return
			}

			c.Printf("status:     %s (%.0f%%)\n", st.Status, st.Progress*100)
			c.Printf("samples:    %d\n", st.Samples)
			c.Printf("characters: %s\n", strings.Join(st.Characters, " "))
			if len(st.Model) > 0 {
				c.Printf("model:      %s\n", strings.Join(st.Model, " "))
			}
			c.Println(st.Message)
		},
	}
}
