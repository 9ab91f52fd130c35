//
// Copyright 2014-2017 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package serial // import "github.com/serialcore/uartcore"

// ListPorts enumerates the serial port device names currently visible to
// the OS. It never fails structurally: an enumeration error on the native
// side comes back as an empty slice plus the underlying error, not a
// process-wide failure.
func ListPorts() ([]string, error) {
	return nativeGetPortsList()
}
