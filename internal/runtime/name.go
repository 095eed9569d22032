package runtime

import (
	"strings"
	"unicode"

	"github.com/aretw0/barista/pkg/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ValidateName trims raw and checks that it is non-empty and made only of
// letters and whitespace. It returns the title-cased name.
func ValidateName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", domain.NewValidationError("name", domain.MsgEmptyName, domain.ErrEmptyName)
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) {
			return "", domain.NewValidationError("name", domain.MsgInvalidName, domain.ErrInvalidName)
		}
	}
	// Casers keep state; one per call.
	return cases.Title(language.Und).String(name), nil
}
