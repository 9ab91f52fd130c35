package main

import (
	"github.com/spf13/cobra"
)

func newRTSCmd() *cobra.Command {
	var assert bool

	cmd := &cobra.Command{
		Use:   "rts <port>",
		Short: "Assert or clear the RTS modem-control line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			portName := args[0]
			m := newManager()

			h, err := m.Open(portName, true, true, true)
			if err != nil {
				return err
			}
			defer m.Close(h)

			return m.SetRTS(h, assert)
		},
	}

	cmd.Flags().BoolVar(&assert, "assert", true, "assert RTS; pass --assert=false to clear it")
	return cmd
}
