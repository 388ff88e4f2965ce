package yamlutil

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// QuoteScalar renders s as a single-line YAML scalar, quoting it only when a
// plain scalar would change its meaning (for example "yes", "1.0" or "a: b").
func QuoteScalar(s string) string {
	out, err := yaml.Marshal(s)
	if err != nil {
		return strconv.Quote(s)
	}

	rendered := strings.TrimSuffix(string(out), "\n")
	if strings.Contains(rendered, "\n") {
		return strconv.Quote(s)
	}

	return rendered
}
