package checkout

import "slices"

// Field names a checkout input. The values match the JSON keys.
type Field string

const (
	FieldFullName    Field = "fullName"
	FieldEmail       Field = "email"
	FieldPhone       Field = "phone"
	FieldCity        Field = "city"
	FieldDistrict    Field = "district"
	FieldAddressLine Field = "addressLine"

	FieldCardName   Field = "cardName"
	FieldCardNumber Field = "cardNumber"
	FieldExpiry     Field = "expiry"
	FieldCVC        Field = "cvc"
)

var (
	AddressFields = []Field{FieldFullName, FieldEmail, FieldPhone, FieldCity, FieldDistrict, FieldAddressLine}
	PaymentFields = []Field{FieldCardName, FieldCardNumber, FieldExpiry, FieldCVC}
)

func (f Field) Valid() bool {
	return slices.Contains(AddressFields, f) || slices.Contains(PaymentFields, f)
}

type Address struct {
	FullName    string `json:"fullName" validate:"trimmin=3"`
	Email       string `json:"email" validate:"storemail"`
	Phone       string `json:"phone" validate:"gsmphone"`
	City        string `json:"city" validate:"trimmin=2"`
	District    string `json:"district" validate:"trimmin=2"`
	AddressLine string `json:"addressLine" validate:"trimmin=8"`
}

// Card holds what the shopper sees; CardNumber is the grouped display form.
type Card struct {
	CardName   string `json:"cardName" validate:"trimmin=3"`
	CardNumber string `json:"cardNumber" validate:"carddigits"`
	Expiry     string `json:"expiry" validate:"mmyy"`
	CVC        string `json:"cvc" validate:"cvcdigits"`
}

// formatted applies the input masks.
func (a Address) formatted() Address {
	a.Phone = FormatPhone(a.Phone)
	return a
}

func (c Card) formatted() Card {
	c.CardNumber = FormatCardNumber(c.CardNumber)
	c.Expiry = FormatExpiry(c.Expiry)
	c.CVC = FormatCVC(c.CVC)
	return c
}

// Digits returns the normalized card number.
func (c Card) Digits() string {
	return DigitsOnly(c.CardNumber)
}

var fieldMessages = map[string]string{
	string(FieldFullName):    "Enter at least 3 characters.",
	string(FieldEmail):       "Enter a valid email.",
	string(FieldPhone):       "Phone number must be 11 digits and start with 0.",
	string(FieldCity):        "Enter a city.",
	string(FieldDistrict):    "Enter a district.",
	string(FieldAddressLine): "Enter a more detailed address.",
	string(FieldCardName):    "Enter at least 3 characters.",
	string(FieldCardNumber):  "Card number must be 16 digits.",
	string(FieldExpiry):      "Enter a valid expiry (MM/YY).",
	string(FieldCVC):         "CVC must be 3 or 4 digits.",
}
