package web

import (
	"html/template"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	printer = message.NewPrinter(language.AmericanEnglish)
	titler  = cases.Title(language.English)
)

// Money formats an amount as dollars with two decimals and digit grouping.
func Money(v any) string {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case decimal.Decimal:
		f = n.Round(2).InexactFloat64()
	case *decimal.Decimal:
		if n != nil {
			f = n.Round(2).InexactFloat64()
		}
	}
	return printer.Sprintf("$%.2f", f)
}

// Date formats t as a US short date, e.g. 2/3/2025.
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("1/2/2006")
}

// DateTime formats t with a 24-hour clock, e.g. Feb 3, 2025, 14:05.
func DateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006, 15:04")
}

// Title upper-cases the first letter of each word.
func Title(s string) string { return titler.String(s) }

var funcs = template.FuncMap{
	"money":    Money,
	"date":     Date,
	"datetime": DateTime,
	"title":    Title,
}
