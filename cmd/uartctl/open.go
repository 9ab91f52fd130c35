package main

import (
	"fmt"

	"github.com/spf13/cobra"

	serial "github.com/serialcore/uartcore"
)

func newOpenCmd() *cobra.Command {
	var baud int
	var read, write, exclusive bool

	cmd := &cobra.Command{
		Use:   "open <port>",
		Short: "Open, configure, and immediately close a port as a connectivity check",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			portName := args[0]
			m := newManager()

			h, err := m.Open(portName, read, write, exclusive)
			if err != nil {
				return err
			}
			if h == serial.DuplicateExclusive {
				return fmt.Errorf("uartctl: %s is already open exclusively in this process", portName)
			}
			defer m.Close(h)

			if err := m.ConfigureData(h, serial.DataBits8, serial.StopBits1, serial.ParityNone, baud, 0); err != nil {
				return err
			}

			status, err := m.LineStatus(h)
			if err != nil {
				return err
			}
			fmt.Printf("%s opened at %d baud (handle=%d)\n", portName, baud, h)
			fmt.Printf("CTS=%d DSR=%d DCD=%d RI=%d LOOP=%d RTS=%d DTR=%d\n",
				status.CTS, status.DSR, status.DCD, status.RI, status.LOOP, status.RTS, status.DTR)
			return nil
		},
	}

	cmd.Flags().IntVar(&baud, "baud", serial.Baud9600, "baud rate")
	cmd.Flags().BoolVar(&read, "read", true, "open for reading")
	cmd.Flags().BoolVar(&write, "write", true, "open for writing")
	cmd.Flags().BoolVar(&exclusive, "exclusive", true, "open exclusively")
	return cmd
}
