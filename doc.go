//
// Copyright 2014-2016 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

/*
Package serial is a cross-platform library for uniform access to UART-style
serial ports on Linux, Windows, macOS, FreeBSD, NetBSD and OpenBSD. There
is no Solaris adapter.

Unlike a plain io.ReadWriteCloser wrapper, this package is built around a
handle-oriented Manager that owns a process-wide registry of open ports,
dispatches background data and line-event callbacks to registered listeners,
and enforces the exclusive-ownership and close/unregister-ordering contracts
documented on Manager.

	mgr := serial.NewManager()
	h, err := mgr.Open("/dev/ttyUSB0", true, true, true)
	if err != nil {
		log.Fatal(err)
	}
	defer mgr.Close(h)

	if err := mgr.ConfigureData(h, 8, serial.StopBits1, serial.ParityNone, 115200, 0); err != nil {
		log.Fatal(err)
	}

	res, err := mgr.ReadBytes(h, 1024)

Listeners run on dedicated background goroutines owned by the Manager's
dispatcher and are torn down synchronously by Close/UnregisterDataListener/
UnregisterEventListener, so no goroutine outlives the handle it serves.

This package itself doesn't make use of cgo; the enumerator subpackage uses
cgo (IOKit) on macOS.
*/
package serial // import "github.com/serialcore/uartcore"
