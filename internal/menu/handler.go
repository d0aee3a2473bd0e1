package menu

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"cozycorner-be/internal/logger"
	"cozycorner-be/internal/utils"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// List is the public catalog read. Query params: category, vegetarian, vegan,
// glutenFree (booleans), all=true to include unavailable items (admin views).
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := parseListFilter(r)

	items, err := h.svc.ListItems(r.Context(), filter)
	if err != nil {
		logger.FromCtx(r.Context()).Error("failed to list menu", zap.Error(err))
		utils.WriteJSONError(w, "error fetching menu", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []MenuItem{}
	}

	utils.WriteJSON(w, http.StatusOK, items)
}

// ByCategory serves the public per-category listing.
func (h *Handler) ByCategory(w http.ResponseWriter, r *http.Request) {
	category := Category(mux.Vars(r)["category"])
	if !ValidCategory(category) {
		utils.WriteJSONError(w, ErrInvalidCategory.Error(), http.StatusBadRequest)
		return
	}

	items, err := h.svc.ListItems(r.Context(),
		&ListFilter{Category: &category, AvailableOnly: true})
	h.respondItems(w, r, items, err)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.SearchItems(r.Context(), mux.Vars(r)["query"])
	h.respondItems(w, r, items, err)
}

func (h *Handler) Featured(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.FeaturedItems(r.Context())
	h.respondItems(w, r, items, err)
}

func (h *Handler) respondItems(w http.ResponseWriter, r *http.Request, items []MenuItem, err error) {
	if err != nil {
		logger.FromCtx(r.Context()).Error("failed to list menu", zap.Error(err))
		utils.WriteJSONError(w, "error fetching menu", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []MenuItem{}
	}

	utils.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ToUint(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteJSONError(w, "invalid menu item id", http.StatusBadRequest)
		return
	}

	item, err := h.svc.GetItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrMenuItemNotFound) {
			utils.WriteJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		utils.WriteJSONError(w, "error fetching menu item", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var item MenuItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		utils.WriteJSONError(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	if err := h.svc.CreateItem(r.Context(), &item); err != nil {
		writeMenuError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ToUint(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteJSONError(w, "invalid menu item id", http.StatusBadRequest)
		return
	}

	var item MenuItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		utils.WriteJSONError(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	item.ID = id

	if err := h.svc.UpdateItem(r.Context(), &item); err != nil {
		writeMenuError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ToUint(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteJSONError(w, "invalid menu item id", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteItem(r.Context(), id); err != nil {
		writeMenuError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Menu item deleted successfully"})
}

func writeMenuError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrMenuItemNotFound):
		utils.WriteJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidCategory), errors.Is(err, ErrInvalidPrice):
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		logger.FromCtx(r.Context()).Error("menu operation failed", zap.Error(err))
		utils.WriteJSONError(w, "server error", http.StatusInternalServerError)
	}
}

func parseListFilter(r *http.Request) *ListFilter {
	q := r.URL.Query()

	filter := &ListFilter{AvailableOnly: q.Get("all") != "true"}
	used := !filter.AvailableOnly

	if c := q.Get("category"); c != "" {
		cat := Category(c)
		filter.Category = &cat
		used = true
	}
	for param, dest := range map[string]**bool{
		"vegetarian": &filter.Vegetarian,
		"vegan":      &filter.Vegan,
		"glutenFree": &filter.GlutenFree,
	} {
		if v := q.Get(param); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dest = &b
				used = true
			}
		}
	}

	if !used {
		// Plain public listing: cacheable path.
		return nil
	}
	return filter
}
