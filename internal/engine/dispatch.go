package engine

import (
	"fmt"

	"notion-forms/internal/metadata"
)

func init() {
	if err := checkDispatchTables(); err != nil {
		panic(err)
	}
}

// checkDispatchTables verifies that the form builder and the payload encoder
// handle exactly the supported property types.
func checkDispatchTables() error {
	supported := metadata.SupportedPropertyTypes()
	if len(widgetBuilders) != len(supported) {
		return fmt.Errorf("widget table covers %d types, want %d", len(widgetBuilders), len(supported))
	}
	if len(encoders) != len(supported) {
		return fmt.Errorf("encoder table covers %d types, want %d", len(encoders), len(supported))
	}
	for _, t := range supported {
		if _, ok := widgetBuilders[t]; !ok {
			return fmt.Errorf("no widget for property type %s", t)
		}
		if _, ok := encoders[t]; !ok {
			return fmt.Errorf("no encoder for property type %s", t)
		}
	}
	return nil
}
