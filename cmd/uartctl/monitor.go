package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	serial "github.com/serialcore/uartcore"
)

func newMonitorCmd() *cobra.Command {
	var baud int

	cmd := &cobra.Command{
		Use:   "monitor <port>",
		Short: "Open a port and print incoming data and line events until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			portName := args[0]
			m := newManager()

			h, err := m.Open(portName, true, true, true)
			if err != nil {
				return err
			}
			defer m.Close(h)

			if err := m.ConfigureData(h, serial.DataBits8, serial.StopBits1, serial.ParityNone, baud, 0); err != nil {
				return err
			}

			tok, err := m.RegisterDataListener(h, func(data []byte) {
				fmt.Printf("%s", data)
			})
			if err != nil {
				return err
			}
			defer m.UnregisterDataListener(tok)

			evTok, err := m.RegisterEventListener(h, func(mask serial.EventMask) {
				fmt.Fprintf(os.Stderr, "\n[line event mask=%#x]\n", mask)
			}, serial.MaskCTS|serial.MaskDSR|serial.MaskDCD|serial.MaskRI)
			if err != nil {
				return err
			}
			defer m.UnregisterEventListener(evTok)

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt)
			<-sig
			return nil
		},
	}

	cmd.Flags().IntVar(&baud, "baud", serial.Baud9600, "baud rate")
	return cmd
}
