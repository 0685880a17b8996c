package earley

import (
	"fmt"
	"io"

	"github.com/npillmayer/schuko/tracing"
)

func dumpPosition(c *Chart, p int) {
	if tracer().GetTraceLevel() < tracing.LevelDebug {
		return
	}
	tok := "$"
	if p < len(c.input) {
		tok = c.input[p].token
	}
	tracer().Debugf("--- Position %04d: %-10s ---------------------------", p, tok)
	for n, h := range c.Items(p) {
		tracer().Debugf("[%2d] %s", n+1, &c.items[h])
	}
}

// Dump writes the items of all positions to w. Intended for debugging.
func (c *Chart) Dump(w io.Writer) {
	for p := range c.sets {
		tok := "$"
		if p < len(c.input) {
			tok = c.input[p].token
		}
		fmt.Fprintf(w, "--- %d: %s\n", p, tok)
		for _, h := range c.Items(p) {
			fmt.Fprintf(w, "  %5d %s\n", h, &c.items[h])
		}
	}
}
