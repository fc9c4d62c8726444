package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "spaces", input: "blog title", want: "BLOG_TITLE"},
		{name: "special characters dropped", input: "##weird@Na_me", want: "WEIRDNA_ME"},
		{name: "inner symbols", input: "hello@world#test", want: "HELLOWORLDTEST"},
		{name: "hyphen", input: "sender e-mail", want: "SENDER_E_MAIL"},
		{name: "diacritics", input: "café", want: "CAFE"},
		{name: "trailing symbol", input: "testing is good#", want: "TESTING_IS_GOOD"},
		{name: "only symbols", input: "@#$%", want: ""},
		{name: "surrounding separators", input: "  --site name--  ", want: "SITE_NAME"},
		{name: "separator runs", input: "a -  - b", want: "A_B"},
		{name: "leading underscore", input: "_private", want: "PRIVATE"},
		{name: "already a slug", input: "MAX_UPLOAD_SIZE", want: "MAX_UPLOAD_SIZE"},
		{name: "non latin script", input: "日本 config", want: "CONFIG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Slugify(tt.input))
		})
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"blog title", "##weird@Na_me", "Élan vital - v2", "a_ b", "__x__", ""}
	for _, in := range inputs {
		once := Slugify(in)
		assert.Equal(t, once, Slugify(once), "input %q", in)
	}
}
