// SPDX-License-Identifier: MPL-2.0

package main

import cmd "archbundle-cli/cmd/archbundle"

func main() {
	cmd.Execute()
}
