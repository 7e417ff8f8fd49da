package yaml

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// EncodeReport writes v as a YAML document with two-space indentation
func EncodeReport(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}
