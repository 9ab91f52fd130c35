package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	serial "github.com/serialcore/uartcore"
)

func newReceiveCmd() *cobra.Command {
	var baud int
	var idle time.Duration

	cmd := &cobra.Command{
		Use:   "receive <port> <file>",
		Short: "Read raw bytes from port into a file until the line goes idle",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			portName, path := args[0], args[1]
			m := newManager()

			h, err := m.Open(portName, true, true, true)
			if err != nil {
				return err
			}
			defer m.Close(h)

			if err := m.ConfigureData(h, serial.DataBits8, serial.StopBits1, serial.ParityNone, baud, 0); err != nil {
				return err
			}

			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer f.Close()

			for lastData := time.Now(); time.Since(lastData) < idle; {
				res, err := m.ReadBytes(h, 0)
				if err != nil {
					return err
				}
				if res.EOF {
					return nil
				}
				if len(res.Data) == 0 {
					time.Sleep(20 * time.Millisecond)
					continue
				}
				lastData = time.Now()
				if _, err := f.Write(res.Data); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&baud, "baud", serial.Baud9600, "baud rate")
	cmd.Flags().DurationVar(&idle, "idle", 2*time.Second, "stop after this long with no new data")
	return cmd
}

func newXmodemReceiveCmd() *cobra.Command {
	var baud int

	cmd := &cobra.Command{
		Use:   "xmodem-receive <port> <file>",
		Short: "Receive a file from the peer on port using XMODEM",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			portName, path := args[0], args[1]
			m := newManager()

			h, err := m.Open(portName, true, true, true)
			if err != nil {
				return err
			}
			defer m.Close(h)

			if err := m.ConfigureData(h, serial.DataBits8, serial.StopBits1, serial.ParityNone, baud, 0); err != nil {
				return err
			}
			return m.ReceiveFile(h, path, serial.XMODEM)
		},
	}

	cmd.Flags().IntVar(&baud, "baud", serial.Baud9600, "baud rate")
	return cmd
}
