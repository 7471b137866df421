package validate_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/qrmenu/pkg/optional"
	"github.com/shashiranjanraj/qrmenu/pkg/validate"
)

type registerInput struct {
	Name     string `json:"name"     validate:"required,min=2"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(registerInput{Name: "Ayşe", Email: "ayse@example.com", Password: "secret1"})
	assert.False(t, validate.HasErrors(errs), "%v", errs)
}

func TestCheckKeepsDeclarationOrder(t *testing.T) {
	errs := validate.Check(registerInput{Name: "A", Email: "nope"})
	require.Len(t, errs, 3)
	assert.Equal(t, "name", errs[0].Field)
	assert.Equal(t, "The name must be at least 2 characters.", errs[0].Message)
	assert.Equal(t, "email", errs[1].Field)
	assert.Equal(t, "password", errs[2].Field)
	assert.Equal(t, "The password field is required.", errs[2].Message)
}

func TestMinCountsRunesNotBytes(t *testing.T) {
	type in struct {
		Name string `json:"name" validate:"required,min=2"`
	}
	assert.Empty(t, validate.Check(in{Name: "Çö"}))
}

func TestNumericBounds(t *testing.T) {
	type in struct {
		Price float64 `json:"price" validate:"gte=0"`
	}
	assert.NotEmpty(t, validate.Check(in{Price: -0.01}))
	assert.Empty(t, validate.Check(in{Price: 0}))
	assert.Empty(t, validate.Check(in{Price: 12.5}))
}

func TestSliceMin(t *testing.T) {
	type in struct {
		IDs []string `json:"categoryIds" validate:"required,min=1"`
	}
	errs := validate.Struct(in{})
	assert.Equal(t, "The categoryIds field is required.", errs["categoryIds"])
	assert.Empty(t, validate.Check(in{IDs: []string{"a"}}))
}

func TestHexColor(t *testing.T) {
	type in struct {
		Color string `json:"primaryColor" validate:"nullable,hexcolor"`
	}
	assert.Empty(t, validate.Check(in{}))
	assert.Empty(t, validate.Check(in{Color: "#F97316"}))
	assert.NotEmpty(t, validate.Check(in{Color: "orange"}))
	assert.NotEmpty(t, validate.Check(in{Color: "#fff"}))
}

func TestInRule(t *testing.T) {
	type in struct {
		Driver string `json:"driver" validate:"required,in=s3,local,max=10"`
	}
	assert.Empty(t, validate.Check(in{Driver: "local"}))
	errs := validate.Struct(in{Driver: "ftp"})
	assert.Equal(t, "The selected driver is invalid.", errs["driver"])
}

type itemPatch struct {
	Name        optional.Value[string]  `json:"name"        validate:"min=1"`
	Description optional.Value[string]  `json:"description" validate:"nullable,max=20"`
	Price       optional.Value[float64] `json:"price"       validate:"gte=0"`
}

func TestOptionalFieldsAreSkippedWhenAbsent(t *testing.T) {
	var p itemPatch
	require.NoError(t, json.Unmarshal([]byte(`{}`), &p))
	assert.Empty(t, validate.Check(p))
}

func TestOptionalNullHandling(t *testing.T) {
	var p itemPatch
	require.NoError(t, json.Unmarshal([]byte(`{"description":null,"name":null}`), &p))

	errs := validate.Struct(p)
	require.Len(t, errs, 1)
	assert.Equal(t, "The name field may not be null.", errs["name"])
}

func TestOptionalValuesAreValidated(t *testing.T) {
	var p itemPatch
	require.NoError(t, json.Unmarshal([]byte(`{"name":"","price":-1,"description":"a very long description indeed"}`), &p))

	errs := validate.Check(p)
	require.Len(t, errs, 3)
	assert.Equal(t, "name", errs[0].Field)
	assert.Equal(t, "description", errs[1].Field)
	assert.Equal(t, "price", errs[2].Field)
}

func TestPointerFieldsAreDereferenced(t *testing.T) {
	type in struct {
		Color *string `json:"primaryColor" validate:"hexcolor"`
		Name  *string `json:"name"         validate:"required"`
	}
	good, bad := "#112233", "blue"

	errs := validate.Struct(in{Color: &good})
	require.Len(t, errs, 1)
	assert.Equal(t, "The name field is required.", errs["name"])

	errs = validate.Struct(in{Color: &bad, Name: &good})
	assert.Contains(t, errs, "primaryColor")
}

func TestNonStructReturnsNothing(t *testing.T) {
	assert.Nil(t, validate.Check("just a string"))
}
