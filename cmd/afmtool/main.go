// afmtool merges user filters into AFM execution definitions and
// redistributes global date filters onto measures.
package main

import (
	"os"

	"github.com/pbenes/gooddata-data-layer/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
