package normalize

import (
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/cleared-dev/receivables/internal/model"
)

// Date fields consulted, in order, for each record kind.
var (
	invoiceDateKeys  = []string{"issueDate", "date", "createdAt"}
	orderDateKeys    = []string{"orderDate", "date", "createdAt"}
	contractDateKeys = []string{"contractDate", "startDate", "date", "createdAt"}
	expenseDateKeys  = []string{"date", "expenseDate", "createdAt"}
)

// Invoices normalizes an invoice collection.
func Invoices(raw []byte) []model.Invoice {
	els := list(raw, "invoices")
	out := make([]model.Invoice, 0, len(els))
	for _, el := range els {
		out = append(out, invoice(el))
	}
	return out
}

// Payments normalizes a payment collection.
func Payments(raw []byte) []model.Payment {
	els := list(raw, "payments")
	out := make([]model.Payment, 0, len(els))
	for _, el := range els {
		out = append(out, payment(el))
	}
	return out
}

// Clients normalizes a client collection.
func Clients(raw []byte) []model.Client {
	els := list(raw, "clients")
	out := make([]model.Client, 0, len(els))
	for _, el := range els {
		name := displayName(el)
		if name == "" {
			name = model.NoRef
		}
		out = append(out, model.Client{ID: recordID(el), Name: name})
	}
	return out
}

// Projects normalizes a project collection.
func Projects(raw []byte) []model.Project {
	els := list(raw, "projects")
	out := make([]model.Project, 0, len(els))
	for _, el := range els {
		out = append(out, model.Project{
			ID:     recordID(el),
			Name:   projectName(el),
			Client: ref(el, "clientId", "client"),
		})
	}
	return out
}

// Orders normalizes an order collection.
func Orders(raw []byte) []model.Financial {
	return financials(raw, "orders", model.KindOrder, orderDateKeys)
}

// Contracts normalizes a contract collection.
func Contracts(raw []byte) []model.Financial {
	return financials(raw, "contracts", model.KindContract, contractDateKeys)
}

// Expenses normalizes an expense collection.
func Expenses(raw []byte) []model.Financial {
	return financials(raw, "expenses", model.KindExpense, expenseDateKeys)
}

func financials(raw []byte, collection string, kind model.Kind, dateKeys []string) []model.Financial {
	els := list(raw, collection)
	out := make([]model.Financial, 0, len(els))
	for _, el := range els {
		tax1 := el.Get("tax1")
		if !present(el, "tax1") {
			tax1 = el.Get("tax")
		}
		out = append(out, model.Financial{
			Kind:    kind,
			ID:      recordID(el),
			Client:  ref(el, "clientId", "client"),
			Amount:  amount(el.Get("amount")),
			Tax1Pct: amount(tax1),
			Tax2Pct: amount(el.Get("tax2")),
			TDS:     amount(el.Get("tds")),
			Date:    firstDate(el, dateKeys...),
		})
	}
	return out
}

func invoice(el gjson.Result) model.Invoice {
	items := lineItems(el.Get("items"))

	principal := amount(el.Get("amount"))
	if !present(el, "amount") && len(items) > 0 {
		principal = decimal.Zero
		for _, li := range items {
			principal = principal.Add(li.Total())
		}
		principal = model.ClampZero(principal)
	}

	return model.Invoice{
		ID:        recordID(el),
		Client:    ref(el, "clientId", "client"),
		Project:   projectRef(el),
		Amount:    principal,
		Tax1Pct:   amount(el.Get("tax1")),
		Tax2Pct:   amount(el.Get("tax2")),
		TDS:       amount(el.Get("tds")),
		IssueDate: firstDate(el, invoiceDateKeys...),
		DueDate:   date(el.Get("dueDate")),
		Status:    model.InvoiceStatus(text(el.Get("status"))),
		Items:     items,
	}
}

func payment(el gjson.Result) model.Payment {
	invoiceID := ident(el.Get("invoiceId"))
	if invoiceID == "" {
		invoiceID = ident(el.Get("invoice"))
	}
	return model.Payment{
		ID:        recordID(el),
		InvoiceID: invoiceID,
		Client:    ref(el, "clientId", "client"),
		Amount:    amount(el.Get("amount")),
		Date:      firstDate(el, "date", "paymentDate", "createdAt"),
		Method:    text(el.Get("method")),
		Note:      text(el.Get("note")),
	}
}

func lineItems(v gjson.Result) []model.LineItem {
	if !v.IsArray() {
		return nil
	}
	var items []model.LineItem
	for _, it := range v.Array() {
		if !it.IsObject() {
			continue
		}
		items = append(items, model.LineItem{
			Name:     text(it.Get("name")),
			Quantity: number(it.Get("quantity")),
			Rate:     number(it.Get("rate")),
		})
	}
	return items
}

// ref resolves a relation from an id field and an inline field. Either may
// hold a bare identifier or a populated object.
func ref(el gjson.Result, idKey, inlineKey string) model.Ref {
	var r model.Ref

	byID := el.Get(idKey)
	r.ID = ident(byID)
	if byID.IsObject() {
		r.Name = displayName(byID)
	}

	inline := el.Get(inlineKey)
	switch {
	case inline.IsObject():
		if r.ID == "" {
			r.ID = ident(inline)
		}
		if r.Name == "" {
			r.Name = displayName(inline)
		}
	default:
		if r.ID == "" {
			r.ID = text(inline)
		}
	}
	return r
}

func projectRef(el gjson.Result) model.Ref {
	r := ref(el, "projectId", "project")
	for _, k := range []string{"projectId", "project"} {
		if p := el.Get(k); p.IsObject() {
			if name := projectName(p); name != "" {
				r.Name = name
				break
			}
		}
	}
	return r
}

func projectName(obj gjson.Result) string {
	if s := text(obj.Get("title")); s != "" {
		return s
	}
	return text(obj.Get("name"))
}
