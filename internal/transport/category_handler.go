package transport

import (
	"net/http"

	"storefront/internal/category"
	"storefront/internal/utils"

	"github.com/gorilla/mux"
)

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if cats == nil {
		cats = []*category.Category{}
	}
	utils.WriteJSON(w, http.StatusOK, cats)
}

func (h *Handler) getCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.categories.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var input category.CreateCategoryInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.categories.Create(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.metrics.CatalogMutation("category", "create")
	utils.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	var input category.UpdateCategoryInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.categories.Update(r.Context(), mux.Vars(r)["id"], input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.metrics.CatalogMutation("category", "update")
	utils.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}

	h.metrics.CatalogMutation("category", "delete")
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Category deleted"})
}
