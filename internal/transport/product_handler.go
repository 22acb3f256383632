package transport

import (
	"fmt"
	"mime"
	"net/http"
	"strings"

	"storefront/internal/logger"
	"storefront/internal/product"
	"storefront/internal/utils"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const maxUploadMemory = 32 << 20

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if products == nil {
		products = []*product.Product{}
	}
	utils.WriteJSON(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var input product.CreateProductInput

	if isJSON(r) {
		if err := decodeJSON(r, &input); err != nil {
			writeError(w, r, err)
			return
		}
	} else {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			writeError(w, r, fmt.Errorf("%w: %v", errBadForm, err))
			return
		}
		if err := createInputFromForm(r, &input); err != nil {
			writeError(w, r, err)
			return
		}

		uploaded, err := h.saveUploads(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		input.Images = uploaded
	}

	p, err := h.products.Create(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.metrics.CatalogMutation("product", "create")
	logger.FromCtx(r.Context()).Info("product created",
		zap.String("product_id", p.ID),
		zap.Int("images", len(p.Images)),
	)
	utils.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var input product.UpdateProductInput

	if isJSON(r) {
		if err := decodeJSON(r, &input); err != nil {
			writeError(w, r, err)
			return
		}
	} else {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			writeError(w, r, fmt.Errorf("%w: %v", errBadForm, err))
			return
		}
		if err := updateInputFromForm(r, &input); err != nil {
			writeError(w, r, err)
			return
		}

		uploaded, err := h.saveUploads(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		input.NewImages = uploaded
	}

	p, err := h.products.Update(r.Context(), id, input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.metrics.CatalogMutation("product", "update")
	utils.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}

	h.metrics.CatalogMutation("product", "delete")
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}

func (h *Handler) saveUploads(r *http.Request) ([]string, error) {
	if r.MultipartForm == nil || h.images == nil {
		return nil, nil
	}
	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		return nil, nil
	}

	paths, err := h.images.Save(r.Context(), files)
	if err != nil {
		return nil, err
	}
	h.metrics.ImagesUploaded(len(paths))
	return paths, nil
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

func createInputFromForm(r *http.Request, in *product.CreateProductInput) error {
	if v, ok := utils.FormString(r, "name"); ok {
		in.Name = *v
	}
	if v, ok := utils.FormString(r, "description"); ok {
		in.Description = *v
	}
	if v, ok := utils.FormString(r, "category"); ok {
		in.CategoryID = *v
	}

	price, _, err := utils.FormFloat(r, "price")
	if err != nil {
		return fmt.Errorf("%w: price", errInvalidForm)
	}
	if price != nil {
		in.Price = *price
	}

	if in.Stock, _, err = utils.FormInt(r, "stock"); err != nil {
		return fmt.Errorf("%w: stock", errInvalidForm)
	}
	if in.IsActive, _, err = utils.FormBool(r, "isActive"); err != nil {
		return fmt.Errorf("%w: isActive", errInvalidForm)
	}
	return nil
}

func updateInputFromForm(r *http.Request, in *product.UpdateProductInput) error {
	in.Name, _ = utils.FormString(r, "name")
	in.Description, _ = utils.FormString(r, "description")
	in.CategoryID, _ = utils.FormString(r, "category")

	var err error
	if in.Price, _, err = utils.FormFloat(r, "price"); err != nil {
		return fmt.Errorf("%w: price", errInvalidForm)
	}
	if in.Stock, _, err = utils.FormInt(r, "stock"); err != nil {
		return fmt.Errorf("%w: stock", errInvalidForm)
	}
	if in.IsActive, _, err = utils.FormBool(r, "isActive"); err != nil {
		return fmt.Errorf("%w: isActive", errInvalidForm)
	}

	keep, _ := utils.FormString(r, "keepExistingImages")
	in.KeepExistingImages = keep != nil && strings.EqualFold(*keep, "true")
	return nil
}
