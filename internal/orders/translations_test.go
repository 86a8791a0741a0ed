package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslatedTitle(t *testing.T) {
	row := Translated{ID: 1, Titles: map[string]string{
		"ru": "Себе",
		"en": "Myself",
		"ky": "Өзүмө",
	}}

	tests := []struct {
		accept string
		want   string
	}{
		{accept: "", want: "Себе"},
		{accept: "en-US,en;q=0.9", want: "Myself"},
		{accept: "ky", want: "Өзүмө"},
		{accept: "de-DE", want: "Себе"},
		{accept: "de;q=0.9,en;q=0.5", want: "Myself"},
	}
	for _, tt := range tests {
		t.Run(tt.accept, func(t *testing.T) {
			assert.Equal(t, tt.want, row.Title(tt.accept))
		})
	}

	assert.Equal(t, "", Translated{ID: 2}.Title("en"))
	assert.Equal(t, "Gift", Translated{ID: 3, Titles: map[string]string{"en": "Gift"}}.Title("ru"))
}
