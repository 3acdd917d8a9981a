// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import "github.com/dci-labs/dciagent/cmd"

func main() {
	cmd.Execute()
}
