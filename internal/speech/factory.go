package speech

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// EngineNames lists the selectable engines, in fallback order.
var EngineNames = []string{"espeak", "gtranslate", "googlecloud"}

// New builds the named engine. The empty name selects automatically: the
// offline engine when its binary is installed, otherwise the free network
// engine. credentialsPath is only consulted by the googlecloud engine.
func New(name, credentialsPath string) (Engine, error) {
	switch name {
	case "espeak":
		return NewEspeak()
	case "gtranslate":
		return NewGTranslate(), nil
	case "googlecloud":
		return NewGoogleCloud(credentialsPath)
	case "", "auto":
		e, err := NewEspeak()
		if err == nil {
			return e, nil
		}
		log.Warn("offline engine unavailable, falling back to gtranslate", "err", err)
		return NewGTranslate(), nil
	default:
		return nil, fmt.Errorf("%w: unknown engine %q", ErrEngineInit, name)
	}
}
