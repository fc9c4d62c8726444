package codec

import (
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate = validator.New()

	urlSchemes = map[string]bool{"http": true, "https": true, "ftp": true, "ftps": true}
)

func isURL(s string) bool {
	if s == "" || validate.Var(s, "url") != nil {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return urlSchemes[strings.ToLower(u.Scheme)] && u.Host != ""
}

func isEmail(s string) bool {
	return s != "" && validate.Var(s, "email") == nil
}
