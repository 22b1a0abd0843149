package quotes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func boolPtr(v bool) *bool { return &v }

func TestMapFieldsTranslatesToCRMProperties(t *testing.T) {
	req := QuoteRequest{
		FirstName:          "Dana",
		LastName:           "Buyer",
		Email:              "dana@example.com",
		Phone:              "404-555-0100",
		Company:            "Acme Logistics",
		DeliveryPostalCode: "30303",
		Quantity:           "250",
		PalletType:         "stringer",
		EntryType:          "2-way",
		LumberType:         "hardwood",
		PalletGrade:        "grade-a",
		HeatTreated:        boolPtr(true),
		AdditionalDetails:  "Need delivery by Friday",
		PalletDimensions:   "48x40",
		GCLID:              "Cj0KCQjw",
		Description:        "Repeat customer",
	}

	mapped := MapFields(req)

	assert.Equal(t, "Dana", mapped["firstname"])
	assert.Equal(t, "Buyer", mapped["lastname"])
	assert.Equal(t, "dana@example.com", mapped["email"])
	assert.Equal(t, "404-555-0100", mapped["phone"])
	assert.Equal(t, "Acme Logistics", mapped["company"])
	assert.Equal(t, "30303", mapped["zip"])
	assert.Equal(t, "250", mapped["pallet_quantity"])
	assert.Equal(t, "stringer", mapped["pallet_build"])
	assert.Equal(t, "2-way", mapped["entry_type"])
	assert.Equal(t, "hardwood", mapped["lumber_type"])
	assert.Equal(t, "grade-a", mapped["pallet_grade"])
	assert.Equal(t, "Yes", mapped["heat_treatment"])
	assert.Equal(t, "Need delivery by Friday", mapped["rfq_details"])
	assert.Equal(t, "48x40", mapped["pallet_dimensions"])
	assert.Equal(t, "Cj0KCQjw", mapped["gclid_form"])
	assert.Equal(t, "Repeat customer", mapped["message"])
}

func TestMapFieldsDropsEmptyValues(t *testing.T) {
	req := QuoteRequest{
		FirstName: "Dana",
		LastName:  "Buyer",
		Email:     "dana@example.com",
		Phone:     "   ",
	}

	mapped := MapFields(req)

	assert.Len(t, mapped, 3)
	_, hasPhone := mapped["phone"]
	assert.False(t, hasPhone)
	_, hasHeat := mapped["heat_treatment"]
	assert.False(t, hasHeat, "unset tri-state stays absent")
}

func TestMapFieldsRendersHeatTreatedNo(t *testing.T) {
	mapped := MapFields(QuoteRequest{Email: "dana@example.com", HeatTreated: boolPtr(false)})
	assert.Equal(t, "No", mapped["heat_treatment"])
}

func TestBackupMessageEmptyWithoutQuoteSpecifics(t *testing.T) {
	req := QuoteRequest{
		FirstName: "Dana",
		LastName:  "Buyer",
		Email:     "dana@example.com",
		Company:   "Acme Logistics",
	}
	assert.Empty(t, BackupMessage(req))
}

func TestBackupMessageComposesQuoteSummary(t *testing.T) {
	req := QuoteRequest{
		Company:            "Acme Logistics",
		DeliveryPostalCode: "30303",
		Quantity:           "250",
		PalletType:         "stringer",
		HeatTreated:        boolPtr(true),
		AdditionalDetails:  "Dock height restrictions",
	}

	msg := BackupMessage(req)

	assert.Equal(t, "QUOTE REQUEST DETAILS:\n"+
		"Company: Acme Logistics\n"+
		"Delivery Location: 30303\n"+
		"Quantity: 250\n"+
		"Pallet Type: stringer\n"+
		"Heat Treated: Yes\n"+
		"Additional Details: Dock height restrictions", msg)
}

func TestBackupMessageSkipsBlankLines(t *testing.T) {
	msg := BackupMessage(QuoteRequest{Quantity: "100"})
	assert.Equal(t, "QUOTE REQUEST DETAILS:\nQuantity: 100", msg)
}
