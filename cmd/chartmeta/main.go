// chartmeta keeps a Helm chart repository's catalog metadata consistent.
package main

import (
	"os"

	"github.com/hupe1980/chartmeta/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
