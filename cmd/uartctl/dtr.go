package main

import (
	"github.com/spf13/cobra"
)

func newDTRCmd() *cobra.Command {
	var assert bool

	cmd := &cobra.Command{
		Use:   "dtr <port>",
		Short: "Assert or clear the DTR modem-control line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			portName := args[0]
			m := newManager()

			h, err := m.Open(portName, true, true, true)
			if err != nil {
				return err
			}
			defer m.Close(h)

			return m.SetDTR(h, assert)
		},
	}

	cmd.Flags().BoolVar(&assert, "assert", true, "assert DTR; pass --assert=false to clear it")
	return cmd
}
