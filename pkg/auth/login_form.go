package auth

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	errUtils "github.com/cloudposse/hcloud-projects/errors"
)

// DefaultCSRFField is the name of the login form's anti-forgery input.
const DefaultCSRFField = "_csrf_token"

// LoginForm is a parsed login page.
type LoginForm struct {
	doc *goquery.Document
}

// ParseLoginForm parses the HTML of a login page.
func ParseLoginForm(body []byte) (*LoginForm, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse login page: %w", errUtils.ErrTokenNotFound, err)
	}
	return &LoginForm{doc: doc}, nil
}

// CSRFToken returns the value of the input named field.
func (f *LoginForm) CSRFToken(field string) (string, error) {
	if field == "" {
		field = DefaultCSRFField
	}

	input := f.doc.Find(fmt.Sprintf(`input[name=%q]`, field)).First()
	value, ok := input.Attr("value")
	if !ok || strings.TrimSpace(value) == "" {
		return "", errUtils.Build(fmt.Errorf("%w: no %s input on the login page", errUtils.ErrTokenNotFound, field)).
			WithHint("The identity provider login form may have changed").
			WithContext("field", field).
			Err()
	}

	return value, nil
}
