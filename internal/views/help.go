package views

type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type HelpPage struct {
	Title       string     `json:"title"`
	FAQ         []FAQEntry `json:"faq"`
	ContactText string     `json:"contact_text"`
	SupportPath string     `json:"support_path"`
}

func Help() HelpPage {
	return HelpPage{
		Title: "Customer Support",
		FAQ: []FAQEntry{
			{
				Question: "How long does delivery take?",
				Answer:   "Orders are shipped within 1–3 business days. Delivery time may vary depending on your region and courier availability.",
			},
			{
				Question: "Can I return a product?",
				Answer:   "Yes, you may request a return within 14 days if the product is unused and in original packaging.",
			},
			{
				Question: "Which payment methods are supported?",
				Answer:   "Credit / Debit Card, online payment, and installment plans (where available).",
			},
		},
		ContactText: "Our support team is ready to help you with your questions, complaints, or requests.",
		SupportPath: "/support",
	}
}
