package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDraft() Draft {
	d := NewDraft()
	d.CustomerName = "Amina Benali"
	d.Phone = "0550123456"
	d.RegionID = 16
	d.Address = "12 rue Didouche Mourad"

	return d
}

func TestDraftValidate(t *testing.T) {
	t.Run("valid draft", func(t *testing.T) {
		assert.Nil(t, validDraft().Validate())
	})

	t.Run("empty draft reports every required field", func(t *testing.T) {
		errs := Draft{}.Validate()
		require.NotNil(t, errs)
		for _, field := range []string{"customerName", "phone", "regionId", "address", "quantity", "paymentMethod"} {
			assert.Contains(t, errs, field)
		}
		assert.NotContains(t, errs, "commune")
		assert.NotContains(t, errs, "notes")
	})

	t.Run("whitespace is not a value", func(t *testing.T) {
		d := validDraft()
		d.CustomerName = "   "
		errs := d.Validate()
		assert.Equal(t, FieldErrors{"customerName": "this field is required"}, errs)
	})

	t.Run("region out of range", func(t *testing.T) {
		d := validDraft()
		d.RegionID = 59
		assert.Contains(t, d.Validate(), "regionId")
	})

	t.Run("quantity zero", func(t *testing.T) {
		d := validDraft()
		d.Quantity = 0
		assert.Equal(t, "quantity must be at least 1", d.Validate()["quantity"])
	})

	t.Run("validation is idempotent", func(t *testing.T) {
		d := validDraft()
		d.Address = ""
		assert.Equal(t, d.Validate(), d.Validate())
	})
}

func TestDraftPatch(t *testing.T) {
	name := "Karim"
	qty := 3
	p := DraftPatch{CustomerName: &name, Quantity: &qty}

	d := p.Apply(NewDraft())
	assert.Equal(t, "Karim", d.CustomerName)
	assert.Equal(t, 3, d.Quantity)
	assert.Equal(t, PaymentCashOnDelivery, d.PaymentMethod)
	assert.True(t, p.AffectsPrice())
	assert.False(t, DraftPatch{CustomerName: &name}.AffectsPrice())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("shipped")
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, s)

	_, err = ParseStatus("lost")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
