package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/georgemunganga/accessories-admin/internal/platform/docstore"
	"github.com/georgemunganga/accessories-admin/internal/web"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxUploadBytes = 10 << 20

// Handler exposes catalog pages and the catalog JSON API.
type Handler struct {
	service Service
	view    *web.Renderer
	log     *zap.Logger
}

func NewHandler(service Service, view *web.Renderer, log *zap.Logger) *Handler {
	return &Handler{service: service, view: view, log: log}
}

// RegisterRoutes mounts the admin pages. Callers wrap r with the session guard.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/admin/products", func(r chi.Router) {
		r.Get("/", h.productsPage)
		r.Get("/new", h.newProductPage)
		r.Post("/", h.createProductForm)
		r.Get("/{id}/edit", h.editProductPage)
		r.Post("/{id}", h.updateProductForm)
		r.Post("/{id}/delete", h.deleteProductForm)
	})
	r.Route("/admin/categories", func(r chi.Router) {
		r.Get("/", h.categoriesPage)
		r.Post("/", h.createCategoryForm)
		r.Post("/{id}", h.updateCategoryForm)
		r.Post("/{id}/delete", h.deleteCategoryForm)
	})
}

// RegisterAPI mounts the JSON endpoints relative to the API prefix.
func (h *Handler) RegisterAPI(r chi.Router) {
	r.Route("/catalog", func(r chi.Router) {
		r.Get("/products", h.listProducts)
		r.Post("/products", h.createProduct)
		r.Get("/products/{id}", h.getProduct)
		r.Patch("/products/{id}", h.updateProduct)
		r.Delete("/products/{id}", h.deleteProduct)
		r.Get("/categories", h.listCategories)
		r.Post("/categories", h.createCategory)
		r.Patch("/categories/{id}", h.updateCategory)
		r.Delete("/categories/{id}", h.deleteCategory)
	})
}

// ── pages ────────────────────────────────────────────────────────────────────

type productsData struct {
	Selected   string
	Categories []*Category
	Products   []*Product
}

func (h *Handler) productsPage(w http.ResponseWriter, r *http.Request) {
	selected := r.URL.Query().Get("category")
	if selected == "" {
		selected = AllCategories
	}
	data := productsData{Selected: selected}

	products, err := h.service.ListProducts(r.Context(), selected)
	if err != nil {
		h.log.Error("failed to fetch products", zap.Error(err))
	}
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.log.Error("failed to fetch categories", zap.Error(err))
	}
	data.Products, data.Categories = products, categories

	h.view.Render(w, r, "products", web.Page{Title: "All Products", Active: "products", Data: data})
}

type productFormData struct {
	Product    *Product
	Categories []*Category
}

func (h *Handler) newProductPage(w http.ResponseWriter, r *http.Request) {
	h.renderProductForm(w, r, http.StatusOK, &Product{}, nil)
}

func (h *Handler) editProductPage(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.renderProductForm(w, r, http.StatusOK, p, nil)
}

func (h *Handler) renderProductForm(w http.ResponseWriter, r *http.Request, status int, p *Product, flash *web.Flash) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.log.Error("failed to fetch categories", zap.Error(err))
	}
	title, active := "Add Product", "addproduct"
	if p.ID != "" {
		title, active = "Update Product", "products"
	}
	h.view.RenderStatus(w, r, status, "product_form", web.Page{
		Title:  title,
		Active: active,
		Flash:  flash,
		Data:   productFormData{Product: p, Categories: categories},
	})
}

func (h *Handler) createProductForm(w http.ResponseWriter, r *http.Request) {
	form, err := parseProductForm(r)
	if err != nil {
		h.renderProductForm(w, r, http.StatusBadRequest, form.draft(), failure("Invalid form", err))
		return
	}
	defer form.close()

	req := CreateProductRequest{
		Name:        form.name,
		Description: form.description,
		Price:       form.price,
		Stock:       form.stock,
		CategoryID:  form.categoryID,
		Image:       form.image,
	}
	p, err := h.service.CreateProduct(r.Context(), req)
	if err != nil {
		h.log.Warn("product not created", zap.Error(err))
		h.renderProductForm(w, r, statusFor(err), form.draft(), failure("Error", err))
		return
	}
	web.Success(w, "Success!", fmt.Sprintf("Product %q added successfully.", p.Name))
	web.Redirect(w, r, "/admin/products")
}

func (h *Handler) updateProductForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	form, err := parseProductForm(r)
	if err != nil {
		draft := form.draft()
		draft.ID = id
		h.renderProductForm(w, r, http.StatusBadRequest, draft, failure("Invalid form", err))
		return
	}
	defer form.close()

	req := UpdateProductRequest{
		Name:        &form.name,
		Description: &form.description,
		Price:       &form.price,
		Stock:       &form.stock,
		CategoryID:  &form.categoryID,
		Image:       form.image,
	}
	if _, err := h.service.UpdateProduct(r.Context(), id, req); err != nil {
		h.log.Warn("product not updated", zap.String("id", id), zap.Error(err))
		draft := form.draft()
		draft.ID = id
		h.renderProductForm(w, r, statusFor(err), draft, failure("Error", err))
		return
	}
	web.Success(w, "Success!", "Product updated successfully.")
	web.Redirect(w, r, "/admin/products")
}

func (h *Handler) deleteProductForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.service.DeleteProduct(r.Context(), id)
	switch {
	case errors.Is(err, docstore.ErrReferenced):
		web.Failure(w, "Delete Failed", "Product not deleted because an order is already in place.")
	case err != nil:
		h.log.Error("product not deleted", zap.String("id", id), zap.Error(err))
		web.Failure(w, "Delete Failed", "Product could not be deleted.")
	default:
		web.Success(w, "Deleted", "Product deleted successfully.")
	}
	web.Redirect(w, r, "/admin/products")
}

type categoriesData struct {
	Categories []*Category
}

func (h *Handler) categoriesPage(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.log.Error("failed to fetch categories", zap.Error(err))
	}
	h.view.Render(w, r, "categories", web.Page{
		Title:  "Categories",
		Active: "categories",
		Data:   categoriesData{Categories: categories},
	})
}

func (h *Handler) createCategoryForm(w http.ResponseWriter, r *http.Request) {
	name, image, closeFn, err := parseCategoryForm(r)
	if err != nil {
		web.Failure(w, "Invalid form", err.Error())
		web.Redirect(w, r, "/admin/categories")
		return
	}
	defer closeFn()

	if _, err := h.service.CreateCategory(r.Context(), CreateCategoryRequest{Name: name, Image: image}); err != nil {
		h.log.Warn("category not created", zap.Error(err))
		web.Failure(w, "Error", errorText(err))
	} else {
		web.Success(w, "Success!", "Category added successfully.")
	}
	web.Redirect(w, r, "/admin/categories")
}

func (h *Handler) updateCategoryForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	name, image, closeFn, err := parseCategoryForm(r)
	if err != nil {
		web.Failure(w, "Invalid form", err.Error())
		web.Redirect(w, r, "/admin/categories")
		return
	}
	defer closeFn()

	if _, err := h.service.UpdateCategory(r.Context(), id, UpdateCategoryRequest{Name: &name, Image: image}); err != nil {
		h.log.Warn("category not updated", zap.String("id", id), zap.Error(err))
		web.Failure(w, "Error", errorText(err))
	} else {
		web.Success(w, "Success!", "Category updated successfully.")
	}
	web.Redirect(w, r, "/admin/categories")
}

func (h *Handler) deleteCategoryForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.service.DeleteCategory(r.Context(), id)
	switch {
	case errors.Is(err, docstore.ErrReferenced):
		web.Failure(w, "Delete Failed", "Category not deleted because products still use it.")
	case err != nil:
		h.log.Error("category not deleted", zap.String("id", id), zap.Error(err))
		web.Failure(w, "Delete Failed", "Category could not be deleted.")
	default:
		web.Success(w, "Deleted", "Category deleted successfully.")
	}
	web.Redirect(w, r, "/admin/categories")
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error("catalog request failed", zap.Error(err))
	}
	h.view.RenderStatus(w, r, status, "error", web.Page{Title: http.StatusText(status), Data: errorText(err)})
}

// ── JSON API ─────────────────────────────────────────────────────────────────

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		h.jsonError(w, err)
		return
	}
	web.JSON(w, http.StatusOK, products)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.service.CreateProduct(r.Context(), req)
	if err != nil {
		h.jsonError(w, err)
		return
	}
	web.JSON(w, http.StatusCreated, p)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.jsonError(w, err)
		return
	}
	web.JSON(w, http.StatusOK, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.service.UpdateProduct(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.jsonError(w, err)
		return
	}
	web.JSON(w, http.StatusOK, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.jsonError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.jsonError(w, err)
		return
	}
	web.JSON(w, http.StatusOK, categories)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.service.CreateCategory(r.Context(), req)
	if err != nil {
		h.jsonError(w, err)
		return
	}
	web.JSON(w, http.StatusCreated, c)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	var req UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.service.UpdateCategory(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.jsonError(w, err)
		return
	}
	web.JSON(w, http.StatusOK, c)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.jsonError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) jsonError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error("catalog request failed", zap.Error(err))
	}
	web.JSONError(w, status, errorText(err))
}

// ── helpers ──────────────────────────────────────────────────────────────────

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, docstore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, docstore.ErrReferenced), errors.Is(err, docstore.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// errorText is the message shown to the operator; store internals stay in the log.
func errorText(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		msg := err.Error()
		if i := strings.LastIndex(msg, ": "); i >= 0 {
			msg = msg[i+2:]
		}
		return strings.ToUpper(msg[:1]) + msg[1:] + "."
	case errors.Is(err, docstore.ErrNotFound):
		return "Not found."
	case errors.Is(err, docstore.ErrReferenced):
		return "Still referenced by another record."
	default:
		return "Something went wrong. Please try again."
	}
}

func failure(title string, err error) *web.Flash {
	return &web.Flash{Kind: "error", Title: title, Message: errorText(err)}
}

type productForm struct {
	name, description, categoryID string
	price                         float64
	stock                         int
	image                         *Upload
	file                          multipart.File
}

// draft rebuilds the submitted values so the form can be shown again.
func (f productForm) draft() *Product {
	p := &Product{Name: f.name, Description: f.description, Price: f.price, Stock: f.stock}
	if f.categoryID != "" {
		p.Category = docstore.Ref(f.categoryID)
	}
	return p
}

func (f productForm) close() {
	if f.file != nil {
		f.file.Close()
	}
}

func parseProductForm(r *http.Request) (productForm, error) {
	var f productForm
	if err := parseForm(r); err != nil {
		return f, err
	}
	f.name = strings.TrimSpace(r.FormValue("name"))
	f.description = strings.TrimSpace(r.FormValue("description"))
	f.categoryID = r.FormValue("category")

	price, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("price")), 64)
	if err != nil {
		return f, fmt.Errorf("%w: price must be a number", ErrValidation)
	}
	f.price = price
	stock, err := strconv.Atoi(strings.TrimSpace(r.FormValue("stock")))
	if err != nil {
		return f, fmt.Errorf("%w: stock must be a whole number", ErrValidation)
	}
	f.stock = stock

	f.image, f.file, err = formImage(r)
	return f, err
}

func parseCategoryForm(r *http.Request) (string, *Upload, func(), error) {
	noop := func() {}
	if err := parseForm(r); err != nil {
		return "", nil, noop, err
	}
	image, file, err := formImage(r)
	if err != nil {
		return "", nil, noop, err
	}
	closeFn := noop
	if file != nil {
		closeFn = func() { file.Close() }
	}
	return r.FormValue("name"), image, closeFn, nil
}

func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return fmt.Errorf("%w: could not read upload", ErrValidation)
		}
		return nil
	}
	return r.ParseForm()
}

// formImage returns the uploaded "image" file, or nil when none was chosen.
func formImage(r *http.Request) (*Upload, multipart.File, error) {
	if r.MultipartForm == nil {
		return nil, nil, nil
	}
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: could not read image", ErrValidation)
	}
	if header.Size == 0 {
		file.Close()
		return nil, nil, nil
	}
	return &Upload{Filename: header.Filename, Body: io.Reader(file)}, file, nil
}
