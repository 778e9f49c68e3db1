package models

type Settings struct {
	StoreName     string  `json:"store_name"`
	StoreAddress  string  `json:"store_address"`
	StorePhone    string  `json:"store_phone"`
	Currency      string  `json:"currency"`
	TaxRate       float64 `json:"tax_rate"` // en pourcentage
	ReceiptHeader string  `json:"receipt_header"`
	ReceiptFooter string  `json:"receipt_footer"`
}

func DefaultSettings() Settings {
	return Settings{
		StoreName:     "My Retail POS",
		StoreAddress:  "123 Business St, City, Country",
		StorePhone:    "+1 234 567 890",
		Currency:      "₹",
		TaxRate:       10,
		ReceiptHeader: "Thank you for shopping with us!",
		ReceiptFooter: "Please visit again!",
	}
}

// SettingsPatch : mise à jour partielle, seuls les champs fournis changent.
type SettingsPatch struct {
	StoreName     *string  `json:"store_name" binding:"omitempty,min=1"`
	StoreAddress  *string  `json:"store_address"`
	StorePhone    *string  `json:"store_phone"`
	Currency      *string  `json:"currency" binding:"omitempty,min=1"`
	TaxRate       *float64 `json:"tax_rate" binding:"omitempty,min=0,max=100"`
	ReceiptHeader *string  `json:"receipt_header"`
	ReceiptFooter *string  `json:"receipt_footer"`
}

func (s Settings) Apply(p SettingsPatch) Settings {
	if p.StoreName != nil {
		s.StoreName = *p.StoreName
	}
	if p.StoreAddress != nil {
		s.StoreAddress = *p.StoreAddress
	}
	if p.StorePhone != nil {
		s.StorePhone = *p.StorePhone
	}
	if p.Currency != nil {
		s.Currency = *p.Currency
	}
	if p.TaxRate != nil {
		s.TaxRate = *p.TaxRate
	}
	if p.ReceiptHeader != nil {
		s.ReceiptHeader = *p.ReceiptHeader
	}
	if p.ReceiptFooter != nil {
		s.ReceiptFooter = *p.ReceiptFooter
	}
	return s
}
