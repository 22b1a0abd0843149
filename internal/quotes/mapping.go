package quotes

import (
	"strings"
)

// QuoteRequest is the lead payload accepted from the storefront forms.
type QuoteRequest struct {
	FirstName          string `json:"firstName" validate:"required"`
	LastName           string `json:"lastName" validate:"required"`
	Email              string `json:"email" validate:"required,email"`
	Phone              string `json:"phone"`
	Company            string `json:"company"`
	DeliveryPostalCode string `json:"deliveryPostalCode"`
	Quantity           string `json:"quantity"`
	PalletType         string `json:"palletType"`
	EntryType          string `json:"entryType"`
	LumberType         string `json:"lumberType"`
	PalletGrade        string `json:"palletGrade"`
	HeatTreated        *bool  `json:"heatTreated"`
	AdditionalDetails  string `json:"additionalDetails"`
	PalletDimensions   string `json:"palletDimensions"`
	GCLID              string `json:"gclid"`
	Description        string `json:"description"`
}

// fieldMapping translates storefront field names to CRM property names.
// Kept as data so the table can be tested without any transport.
var fieldMapping = map[string]string{
	"firstName":          "firstname",
	"lastName":           "lastname",
	"email":              "email",
	"phone":              "phone",
	"company":            "company",
	"deliveryPostalCode": "zip",
	"quantity":           "pallet_quantity",
	"palletType":         "pallet_build",
	"entryType":          "entry_type",
	"lumberType":         "lumber_type",
	"palletGrade":        "pallet_grade",
	"heatTreated":        "heat_treatment",
	"additionalDetails":  "rfq_details",
	"palletDimensions":   "pallet_dimensions",
	"gclid":              "gclid_form",
	"description":        "message",
}

// MapFields flattens the request into CRM property names, dropping empty
// values entirely. HeatTreated renders as "Yes"/"No".
func MapFields(req QuoteRequest) map[string]string {
	source := map[string]string{
		"firstName":          req.FirstName,
		"lastName":           req.LastName,
		"email":              req.Email,
		"phone":              req.Phone,
		"company":            req.Company,
		"deliveryPostalCode": req.DeliveryPostalCode,
		"quantity":           req.Quantity,
		"palletType":         req.PalletType,
		"entryType":          req.EntryType,
		"lumberType":         req.LumberType,
		"palletGrade":        req.PalletGrade,
		"additionalDetails":  req.AdditionalDetails,
		"palletDimensions":   req.PalletDimensions,
		"gclid":              req.GCLID,
		"description":        req.Description,
	}

	mapped := make(map[string]string, len(source)+1)
	for name, value := range source {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		dest, ok := fieldMapping[name]
		if !ok {
			dest = name
		}
		mapped[dest] = trimmed
	}

	if req.HeatTreated != nil {
		mapped[fieldMapping["heatTreated"]] = yesNo(*req.HeatTreated)
	}

	return mapped
}

// BackupMessage composes the human-readable quote summary stored alongside
// the structured fields. Empty when the request has no quote specifics.
func BackupMessage(req QuoteRequest) string {
	if strings.TrimSpace(req.Quantity) == "" && strings.TrimSpace(req.PalletType) == "" {
		return ""
	}

	lines := []string{"QUOTE REQUEST DETAILS:"}
	appendLine := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			lines = append(lines, label+": "+strings.TrimSpace(value))
		}
	}
	appendLine("Company", req.Company)
	appendLine("Delivery Location", req.DeliveryPostalCode)
	appendLine("Pallet Dimensions", req.PalletDimensions)
	appendLine("Quantity", req.Quantity)
	appendLine("Pallet Type", req.PalletType)
	appendLine("Entry Type", req.EntryType)
	appendLine("Lumber Type", req.LumberType)
	appendLine("Pallet Grade", req.PalletGrade)
	if req.HeatTreated != nil {
		lines = append(lines, "Heat Treated: "+yesNo(*req.HeatTreated))
	}
	appendLine("Additional Details", req.AdditionalDetails)

	return strings.Join(lines, "\n")
}

func yesNo(value bool) string {
	if value {
		return "Yes"
	}
	return "No"
}
