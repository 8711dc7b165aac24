package main

import (
	"fmt"

	"github.com/alecthomas/kong"

	"go-chi-calculator/internal/calc"
	"go-chi-calculator/internal/config"
)

type CLI struct {
	Serve ServeCmd `cmd:"" default:"1" help:"Serve the calculator keypad and JSON API (default)."`
	Press PressCmd `cmd:"" help:"Press keys on a fresh calculator and print the screen."`
}

type ServeCmd struct {
	config.Config `embed:""`
}

func (c *ServeCmd) Run() error {
	return serve(c.Config)
}

type PressCmd struct {
	Keys []string `arg:"" help:"Keys in order, e.g. 7 + 3 x 2 =. Use − or -- before a lone -."`
}

// Run prints the expression trail above the display, as on the keypad.
func (c *PressCmd) Run(kctx *kong.Context) error {
	m := calc.NewMachine()
	for _, key := range c.Keys {
		e, err := calc.ParseKey(key)
		if err != nil {
			return err
		}
		m.Dispatch(e)
	}

	v := m.View()
	fmt.Fprintln(kctx.Stdout, v.Expression)
	fmt.Fprintln(kctx.Stdout, v.Display)
	return nil
}
