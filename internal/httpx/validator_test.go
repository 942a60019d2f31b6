package httpx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type isbnPayload struct {
	ISBN string `validate:"required,isbn"`
}

type genrePayload struct {
	Genre string `validate:"required,book_genre"`
}

func TestValidateISBN(t *testing.T) {
	valid := []string{
		"9780134190440",
		"978-0-13-419044-0",
		"0134190440",
		"043942089X",
	}
	for _, isbn := range valid {
		assert.Empty(t, ValidateStruct(isbnPayload{ISBN: isbn}), "expected %s to be valid", isbn)
	}

	invalid := []string{
		"12345",
		"97801341904",
		"abcdefghij",
		"9780134190 44X",
	}
	for _, isbn := range invalid {
		assert.NotEmpty(t, ValidateStruct(isbnPayload{ISBN: isbn}), "expected %s to be invalid", isbn)
	}
}

func TestValidateBookGenre(t *testing.T) {
	assert.Empty(t, ValidateStruct(genrePayload{Genre: "Academic"}))
	assert.Empty(t, ValidateStruct(genrePayload{Genre: "Non-Academic"}))
	assert.NotEmpty(t, ValidateStruct(genrePayload{Genre: "Fiction"}))
	assert.NotEmpty(t, ValidateStruct(genrePayload{Genre: "academic"}))
}

func TestValidateStruct_FieldNames(t *testing.T) {
	details := ValidateStruct(isbnPayload{})
	assert.Len(t, details, 1)
	assert.Equal(t, "iSBN", details[0].Field)
	assert.Contains(t, details[0].Message, "required")
}
