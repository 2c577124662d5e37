package shop

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCoffeePatch_AllowList(t *testing.T) {
	p, err := DecodeCoffeePatch([]byte(`{"name":"Mocha","price":"4.5","quantity":"7"}`))
	require.NoError(t, err)

	require.NotNil(t, p.Name)
	assert.Equal(t, "Mocha", *p.Name)
	require.NotNil(t, p.Price)
	assert.Equal(t, 4.5, *p.Price)
	require.NotNil(t, p.Quantity)
	assert.Equal(t, 7, *p.Quantity)
	assert.Nil(t, p.Photo)

	fields := p.Fields()
	require.Len(t, fields, 3)
	assert.Equal(t, FieldName, fields[0].Name)
	assert.Equal(t, FieldPrice, fields[1].Name)
	assert.Equal(t, FieldQuantity, fields[2].Name)
}

func TestDecodeCoffeePatch_RejectsProtectedFields(t *testing.T) {
	for _, body := range []string{
		`{"email":"mallory@example.com"}`,
		`{"likedBy":[]}`,
		`{"_id":"x"}`,
		`{"quantity.$":1}`,
	} {
		_, err := DecodeCoffeePatch([]byte(body))
		assert.True(t, errors.Is(err, ErrInvalidInput), body)
	}
}

func TestDecodeQuantity(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{`3`, 3, false},
		{`"12"`, 12, false},
		{`" 5 "`, 5, false},
		{`2.0`, 2, false},
		{`2.5`, 0, true},
		{`-1`, 0, true},
		{`"abc"`, 0, true},
		{`true`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := DecodeQuantity(json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeNewCoffee_CoercesQuantity(t *testing.T) {
	c, err := DecodeNewCoffee([]byte(`{"name":"Latte","photo":"p.png","price":"3.25","quantity":"10","email":"owner@example.com","extra":"ignored"}`))
	require.NoError(t, err)
	assert.Equal(t, "Latte", c.Name)
	assert.Equal(t, 10, c.Quantity)
	assert.Equal(t, 3.25, c.Price)
	assert.Equal(t, "owner@example.com", c.Email)
	assert.NotNil(t, c.LikedBy)
	assert.False(t, c.CreatedAt.IsZero())
}

func TestCoffeePatch_Apply(t *testing.T) {
	name := "Flat White"
	qty := 4
	c := &Coffee{Name: "Flat White", Quantity: 1}

	assert.True(t, CoffeePatch{Name: &name, Quantity: &qty}.Apply(c))
	assert.Equal(t, 4, c.Quantity)
	assert.False(t, CoffeePatch{Name: &name}.Apply(c))
	assert.True(t, CoffeePatch{}.Empty())
}
