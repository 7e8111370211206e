package dealerdocs

// labels holds the fixed captions of a document in one language.
type labels struct {
	Lang          string
	Title         string
	Number        string
	Date          string
	Customer      string
	Vehicle       string
	Year          string
	ExteriorColor string
	InteriorColor string
	Chassis       string
	Description   string
	Quantity      string
	UnitPrice     string
	Amount        string
	Total         string
	Notes         string
}

var arabicLabels = labels{
	Lang:          "ar",
	Number:        "الرقم",
	Date:          "التاريخ",
	Customer:      "العميل",
	Vehicle:       "المركبة",
	Year:          "سنة الصنع",
	ExteriorColor: "اللون الخارجي",
	InteriorColor: "اللون الداخلي",
	Chassis:       "رقم الهيكل",
	Description:   "البيان",
	Quantity:      "الكمية",
	UnitPrice:     "سعر الوحدة",
	Amount:        "المبلغ",
	Total:         "الإجمالي",
	Notes:         "ملاحظات",
}

var englishLabels = labels{
	Lang:          "en",
	Number:        "No.",
	Date:          "Date",
	Customer:      "Customer",
	Vehicle:       "Vehicle",
	Year:          "Year",
	ExteriorColor: "Exterior",
	InteriorColor: "Interior",
	Chassis:       "Chassis No.",
	Description:   "Description",
	Quantity:      "Qty",
	UnitPrice:     "Unit price",
	Amount:        "Amount",
	Total:         "Total",
	Notes:         "Notes",
}

// labelsFor picks Arabic captions for rtl documents and English otherwise.
func labelsFor(direction string, kind Kind) labels {
	l, quote, invoice := arabicLabels, "عرض سعر", "فاتورة"
	if direction == DirectionLTR {
		l, quote, invoice = englishLabels, "Quotation", "Invoice"
	}
	l.Title = quote
	if kind == KindInvoice {
		l.Title = invoice
	}
	return l
}
