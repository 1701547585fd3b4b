package sales

import (
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"

	"github.com/georgemunganga/accessories-admin/internal/web"
	"github.com/go-chi/chi/v5"
)

// Handler exposes the sales report page and its JSON form.
type Handler struct {
	service Service
	view    *web.Renderer
}

func NewHandler(service Service, view *web.Renderer) *Handler {
	return &Handler{service: service, view: view}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/sales", h.salesPage)
}

func (h *Handler) RegisterAPI(r chi.Router) {
	r.Get("/sales", h.report)
}

func (h *Handler) salesPage(w http.ResponseWriter, r *http.Request) {
	h.view.Render(w, r, "sales", web.Page{Title: "Sales Report", Active: "sales", Data: h.service.Report(r.Context())})
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	web.JSON(w, http.StatusOK, h.service.Report(r.Context()))
}

// Print writes the report as an aligned text table.
func Print(w io.Writer, report Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "PRODUCT\tCATEGORY\tQTY\tUNIT PRICE\tFIRST SHIPPED\tTOTAL SALES\t")
	for _, row := range report.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t\n",
			row.Name, row.Category, row.TotalQuantity,
			row.UnitPrice.StringFixed(2), row.ShippingDate, row.TotalSales.StringFixed(2))
	}
	fmt.Fprintf(tw, "GRAND TOTAL\t\t\t\t\t%s\t\n", report.GrandTotal.StringFixed(2))
	return tw.Flush()
}
