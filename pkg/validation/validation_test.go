package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type applicantFixture struct {
	FirstName string `json:"first_name" validate:"required,max=100,name_chars"`
	LastName  string `json:"last_name" validate:"required,max=100,name_chars"`
	IDNumber  string `json:"id_number" validate:"required,min=13,max=13,numeric,said"`
}

func TestValidate(t *testing.T) {
	t.Run("valid applicant passes", func(t *testing.T) {
		errs := Validate(applicantFixture{
			FirstName: "Jane",
			LastName:  "Doe",
			IDNumber:  "8001015009087",
		})
		assert.Nil(t, errs)
	})

	t.Run("checksum failure reports value_error on id_number", func(t *testing.T) {
		errs := Validate(applicantFixture{
			FirstName: "Jane",
			LastName:  "Doe",
			IDNumber:  "9001011234088",
		})
		require.Len(t, errs, 1)
		assert.Equal(t, "body.id_number", errs[0].Field)
		assert.Equal(t, "value_error", errs[0].Code)
		assert.Equal(t, "Invalid ID number (checksum failed)", errs[0].Message)
	})

	t.Run("short id reports length error, never checksum", func(t *testing.T) {
		errs := Validate(applicantFixture{
			FirstName: "Jane",
			LastName:  "Doe",
			IDNumber:  "80010150090",
		})
		require.Len(t, errs, 1)
		assert.Equal(t, "body.id_number", errs[0].Field)
		assert.Equal(t, "string_too_short", errs[0].Code)
		assert.Equal(t, "must have at least 13 characters", errs[0].Message)
	})

	t.Run("non-digit id reports pattern error", func(t *testing.T) {
		errs := Validate(applicantFixture{
			FirstName: "Jane",
			LastName:  "Doe",
			IDNumber:  "80010150090A7",
		})
		require.Len(t, errs, 1)
		assert.Equal(t, "string_pattern", errs[0].Code)
	})

	t.Run("aggregates every violated field", func(t *testing.T) {
		errs := Validate(applicantFixture{
			FirstName: "J4ne",
			LastName:  "",
			IDNumber:  "123",
		})
		require.Len(t, errs, 3)

		fields := make(map[string]string, len(errs))
		for _, fe := range errs {
			fields[fe.Field] = fe.Code
		}
		assert.Equal(t, "string_pattern", fields["body.first_name"])
		assert.Equal(t, "missing", fields["body.last_name"])
		assert.Equal(t, "string_too_short", fields["body.id_number"])
	})
}

func TestNameCharsValid(t *testing.T) {
	valid := []string{"Jane", "Mary Jane", "O'Brien", "Du Plessis-Smith", "d'Arcy"}
	for _, name := range valid {
		assert.True(t, NameCharsValid(name), name)
	}

	invalid := []string{"J4ne", "Jane!", "Jane_Doe", "Jane9", "0Doe", "Jan€"}
	for _, name := range invalid {
		assert.False(t, NameCharsValid(name), name)
	}
}

func TestCheckDigitValid(t *testing.T) {
	t.Run("known valid numbers pass", func(t *testing.T) {
		for _, id := range []string{"8001015009087", "7106245929185", "9001011234084"} {
			assert.True(t, CheckDigitValid(id), id)
		}
	})

	t.Run("checksum mismatches fail", func(t *testing.T) {
		for _, id := range []string{"9001011234088", "8001015009086", "9202204720082"} {
			assert.False(t, CheckDigitValid(id), id)
		}
	})

	t.Run("wrong length fails", func(t *testing.T) {
		assert.False(t, CheckDigitValid(""))
		assert.False(t, CheckDigitValid("80010150090"))
		assert.False(t, CheckDigitValid("80010150090870"))
	})

	t.Run("non-digits fail", func(t *testing.T) {
		assert.False(t, CheckDigitValid("8001O15009087"))
	})
}

func TestMaskID(t *testing.T) {
	assert.Equal(t, "8001*********", MaskID("8001015009087"))
	assert.Equal(t, "***", MaskID("123"))
	assert.Equal(t, "****", MaskID("1234"))
	assert.Equal(t, "", MaskID(""))
}
