// panelctl: консольный клиент Inquisition Panel.
package main

import (
	"os"

	"github.com/cwxsss/inquisition-panel/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
