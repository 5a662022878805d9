package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"stayloft/internal/adapters/observability"
	"stayloft/internal/app"
	"stayloft/internal/domain"
	"stayloft/internal/validate"
)

type Handlers struct {
	Identity   *app.IdentityService
	Apartments *app.ApartmentService
	Bookings   *app.BookingService
	Tokens     domain.TokenCodec
	ListRate   int // requests per minute per client IP
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1", func(r chi.Router) {
		r.Post("/auth/register", h.register)
		r.Post("/auth/login", h.login)

		r.Route("/apartments", func(r chi.Router) {
			r.With(RateLimit(h.ListRate)).Get("/", h.listApartments)
			r.With(Authenticate(h.Tokens), RequireRole(domain.RoleHost)).Post("/", h.createApartment)
			r.Get("/{apartmentID}", h.getApartment)

			r.Route("/{apartmentID}/bookings", func(r chi.Router) {
				r.Use(Authenticate(h.Tokens))
				r.With(RequireRole(domain.RoleGuest, domain.RoleHost)).Post("/", h.createBooking)
				r.Get("/", h.listBookings)
			})
		})
	})
}

// ---- error/response plumbing ----

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps the domain taxonomy onto distinct statuses so clients
// can tell "retry with other dates" (409) from "apartment gone" (404)
// from "fix the payload" (400).
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalid):
		writeProblem(w, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
	case errors.Is(err, domain.ErrForbidden):
		writeProblem(w, http.StatusForbidden, "Forbidden", "insufficient privileges")
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrEmailTaken):
		writeProblem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "something went wrong")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Join(domain.ErrInvalid, err)
	}
	return validate.Struct(dst)
}

// ---- auth ----

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=host guest"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type authResponse struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	u, token, err := h.Identity.Register(r.Context(), req.Name, req.Email, req.Password, domain.Role(req.Role))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{User: u, Token: token})
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	u, token, err := h.Identity.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{User: u, Token: token})
}

// ---- apartments ----

type createApartmentRequest struct {
	Title         string   `json:"title" validate:"required,min=3"`
	Description   string   `json:"description" validate:"required,min=10"`
	Location      string   `json:"location" validate:"required"`
	PricePerNight float64  `json:"pricePerNight" validate:"required,gt=0"`
	Amenities     []string `json:"amenities"`
}

func (h *Handlers) createApartment(w http.ResponseWriter, r *http.Request) {
	p, _ := Principal(r.Context())
	var req createApartmentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	av, err := h.Apartments.Create(r.Context(), app.CreateApartment{
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		PricePerNight: req.PricePerNight,
		Amenities:     req.Amenities,
	}, p.Sub)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, av)
}

func (h *Handlers) getApartment(w http.ResponseWriter, r *http.Request) {
	av, err := h.Apartments.Get(r.Context(), chi.URLParam(r, "apartmentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, av)
}

func (h *Handlers) listApartments(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	page, err := h.Apartments.List(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func parseListQuery(r *http.Request) (domain.ApartmentsQuery, error) {
	q := domain.ApartmentsQuery{Page: 1}
	get := r.URL.Query().Get

	if v := get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return q, errors.Join(domain.ErrInvalid, errors.New("page must be a positive integer"))
		}
		q.Page = n
	}
	if v := get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 50 {
			return q, errors.Join(domain.ErrInvalid, errors.New("pageSize must be between 1 and 50"))
		}
		q.PageSize = &n
	}
	if v := get("location"); v != "" {
		q.Location = &v
	}
	for _, bound := range []struct {
		key string
		dst **float64
	}{{"minPrice", &q.MinPrice}, {"maxPrice", &q.MaxPrice}} {
		if v := get(bound.key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || f < 0 {
				return q, errors.Join(domain.ErrInvalid, errors.New(bound.key+" must be a non-negative number"))
			}
			*bound.dst = &f
		}
	}
	if v := get("amenities"); v != "" {
		for _, a := range strings.Split(v, ",") {
			if t := strings.TrimSpace(a); t != "" {
				q.Amenities = append(q.Amenities, t)
			}
		}
	}
	return q, nil
}

// ---- bookings ----

type createBookingRequest struct {
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
}

// bookingResponse keeps dates in their calendar form on the wire.
type bookingResponse struct {
	ID          string    `json:"id"`
	ApartmentID string    `json:"apartmentId"`
	GuestID     string    `json:"guestId"`
	GuestName   string    `json:"guestName"`
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate"`
	TotalPrice  float64   `json:"totalPrice"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toBookingResponse(b domain.Booking) bookingResponse {
	return bookingResponse{
		ID:          b.ID,
		ApartmentID: b.ApartmentID,
		GuestID:     b.GuestID,
		GuestName:   b.GuestName,
		StartDate:   b.StartDate.Format(domain.DayFormat),
		EndDate:     b.EndDate.Format(domain.DayFormat),
		TotalPrice:  b.TotalPrice,
		CreatedAt:   b.CreatedAt,
	}
}

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	p, _ := Principal(r.Context())
	var req createBookingRequest
	if err := decode(r, &req); err != nil {
		observability.ObserveBooking("invalid")
		writeError(w, err)
		return
	}
	start, err := domain.ParseDay(req.StartDate)
	if err != nil {
		observability.ObserveBooking("invalid")
		writeError(w, errors.Join(domain.ErrInvalid, err))
		return
	}
	end, err := domain.ParseDay(req.EndDate)
	if err != nil {
		observability.ObserveBooking("invalid")
		writeError(w, errors.Join(domain.ErrInvalid, err))
		return
	}

	b, err := h.Bookings.Reserve(r.Context(), chi.URLParam(r, "apartmentID"), p.Sub, start, end)
	if err != nil {
		observability.ObserveBooking(bookingOutcome(err))
		writeError(w, err)
		return
	}
	observability.ObserveBooking("reserved")
	writeJSON(w, http.StatusCreated, toBookingResponse(b))
}

func bookingOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalid):
		return "invalid"
	default:
		return "error"
	}
}

func (h *Handlers) listBookings(w http.ResponseWriter, r *http.Request) {
	bs, err := h.Bookings.ListForApartment(r.Context(), chi.URLParam(r, "apartmentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]bookingResponse, 0, len(bs))
	for _, b := range bs {
		out = append(out, toBookingResponse(b))
	}
	writeJSON(w, http.StatusOK, out)
}
