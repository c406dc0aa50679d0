package models

import (
	"fmt"

	"github.com/turtacn/crp/pkg/constants"
	"github.com/turtacn/crp/pkg/utils"
)

// FormInput holds the raw text of the four predictor fields as typed by the user.
type FormInput struct {
	CreditLimit   string `json:"creditLimit" form:"creditLimit"`
	Age           string `json:"age" form:"age"`
	BillAmount    string `json:"billAmount" form:"billAmount"`
	PaymentAmount string `json:"paymentAmount" form:"paymentAmount"`
}

// Set updates a single field by its wire name.
func (f *FormInput) Set(field constants.FormField, value string) error {
	switch field {
	case constants.FieldCreditLimit:
		f.CreditLimit = value
	case constants.FieldAge:
		f.Age = value
	case constants.FieldBillAmount:
		f.BillAmount = value
	case constants.FieldPaymentAmount:
		f.PaymentAmount = value
	default:
		return fmt.Errorf("unknown form field %q", field)
	}
	return nil
}

// Get returns a single field by its wire name.
func (f FormInput) Get(field constants.FormField) string {
	switch field {
	case constants.FieldCreditLimit:
		return f.CreditLimit
	case constants.FieldAge:
		return f.Age
	case constants.FieldBillAmount:
		return f.BillAmount
	case constants.FieldPaymentAmount:
		return f.PaymentAmount
	default:
		return ""
	}
}

// Input coerces the fields to numbers in wire order. Text that is not a
// number becomes NaN and is sent as-is; nothing is validated here.
func (f FormInput) Input() Input {
	in := make(Input, 0, len(constants.FormFields))
	for _, field := range constants.FormFields {
		in = append(in, utils.ParseNumber(f.Get(field)))
	}
	return in
}
