package validation

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/fr"
	ut "github.com/go-playground/universal-translator"
)

const DefaultLocale = "en"

var ErrTranslatorNotFound = errors.New("translator not found")

var catalog = map[string]map[string]string{
	"en": {
		CodeGeneral:                "An error has occurred",
		CodeName:                   "Name is required",
		CodeFieldTypeDuplicateName: "A field type with this name already exists, please choose another name",
		CodeExceededMaxLength:      "Value exceeds the maximum length of {0} characters",
		CodeConstraint:             "Value does not meet a configured constraint: {0}",
	},
	"fr": {
		CodeGeneral:                "Une erreur est survenue",
		CodeName:                   "Le nom est obligatoire",
		CodeFieldTypeDuplicateName: "Un type de champ portant ce nom existe déjà, veuillez choisir un autre nom",
		CodeExceededMaxLength:      "La valeur dépasse la longueur maximale de {0} caractères",
		CodeConstraint:             "La valeur ne respecte pas une contrainte configurée : {0}",
	},
}

// Messages renders error codes into localized messages.
type Messages struct {
	uni *ut.UniversalTranslator
}

// NewMessages registers the message catalog for every supported locale.
// English is the fallback.
func NewMessages() (*Messages, error) {
	fallback := en.New()
	supported := []locales.Translator{fallback, fr.New()}
	uni := ut.New(fallback, supported...)

	for _, l := range supported {
		trans, ok := uni.GetTranslator(l.Locale())
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrTranslatorNotFound, l.Locale())
		}
		for code, text := range catalog[l.Locale()] {
			if err := trans.Add(code, text, false); err != nil {
				return nil, fmt.Errorf("registering %s for %s: %w", code, l.Locale(), err)
			}
		}
	}

	return &Messages{uni: uni}, nil
}

// Translate renders fe for locale. Unknown locales use the fallback and
// unknown codes render as the code itself.
func (m *Messages) Translate(locale string, fe FieldError) string {
	trans, _ := m.uni.GetTranslator(locale)

	params := make([]string, 0, len(fe.Args))
	for _, a := range fe.Args {
		params = append(params, fmt.Sprint(a))
	}

	msg, err := trans.T(fe.Code, params...)
	if err != nil {
		slog.Debug("no message for code", "code", fe.Code, "locale", trans.Locale(), "err", err)
		return fe.Code
	}

	return msg
}

// TranslateAll renders every error of errs keyed by field name.
// Object-level errors use the object name as key.
func (m *Messages) TranslateAll(locale string, errs *Errors) map[string][]string {
	res := make(map[string][]string)
	for _, fe := range errs.All() {
		key := fe.Field
		if key == "" {
			key = fe.Object
		}
		res[key] = append(res[key], m.Translate(locale, fe))
	}

	return res
}
