package app

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"stayloft/internal/domain"
)

// CreateApartment carries the host-supplied listing fields. Shape
// validation (lengths, positive price) happens at the HTTP edge; this
// layer normalizes amenities and resolves the owning host.
type CreateApartment struct {
	Title         string
	Description   string
	Location      string
	PricePerNight float64
	Amenities     []string
}

type ApartmentService struct {
	apartments domain.ApartmentRepository
	users      domain.UserRepository
	cache      domain.Cache
	cacheTTL   time.Duration
	listTTL    time.Duration
}

func NewApartmentService(a domain.ApartmentRepository, u domain.UserRepository, c domain.Cache, cacheTTL, listTTL time.Duration) *ApartmentService {
	return &ApartmentService{apartments: a, users: u, cache: c, cacheTTL: cacheTTL, listTTL: listTTL}
}

func (s *ApartmentService) Create(ctx context.Context, in CreateApartment, hostID string) (domain.ApartmentView, error) {
	host, err := s.users.GetByID(ctx, hostID)
	if err != nil {
		return domain.ApartmentView{}, fmt.Errorf("resolve host: %w", err)
	}
	if in.PricePerNight <= 0 {
		return domain.ApartmentView{}, fmt.Errorf("%w: pricePerNight must be positive", domain.ErrInvalid)
	}

	a := domain.Apartment{
		ID:            uuid.New().String(),
		Title:         strings.TrimSpace(in.Title),
		Description:   strings.TrimSpace(in.Description),
		Location:      strings.TrimSpace(in.Location),
		PricePerNight: round2(in.PricePerNight),
		Amenities:     cleanAmenities(in.Amenities),
		HostID:        host.ID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.apartments.Insert(ctx, a); err != nil {
		return domain.ApartmentView{}, err
	}

	// New listings must show up promptly; drop the default listing page.
	if s.cache != nil {
		_ = s.cache.Del(ctx, listKey(domain.ApartmentsQuery{Page: 1}))
	}
	return domain.ApartmentView{Apartment: a, HostName: host.Name}, nil
}

func (s *ApartmentService) Get(ctx context.Context, id string) (domain.ApartmentView, error) {
	key := "apartment:" + id
	var av domain.ApartmentView
	if ok, _ := s.cache.Get(ctx, key, &av); ok {
		return av, nil
	}
	av, err := s.apartments.GetByID(ctx, id)
	if err != nil {
		return domain.ApartmentView{}, err
	}
	_ = s.cache.Set(ctx, key, av, int(s.cacheTTL.Seconds()))
	return av, nil
}

// List applies the optional filters and assembles the pagination
// envelope. When the caller asked for no page size, every match comes
// back as a single page.
func (s *ApartmentService) List(ctx context.Context, q domain.ApartmentsQuery) (domain.ApartmentsPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}

	key := listKey(q)
	var page domain.ApartmentsPage
	if ok, _ := s.cache.Get(ctx, key, &page); ok {
		return page, nil
	}

	items, total, err := s.apartments.List(ctx, q)
	if err != nil {
		return domain.ApartmentsPage{}, err
	}
	if items == nil {
		items = []domain.ApartmentView{}
	}

	if q.PageSize == nil {
		page = domain.ApartmentsPage{
			Items:    items,
			Total:    total,
			Page:     1,
			PageSize: len(items),
		}
		if total > 0 {
			page.TotalPages = 1
		}
	} else {
		page = domain.ApartmentsPage{
			Items:      items,
			Total:      total,
			Page:       q.Page,
			PageSize:   *q.PageSize,
			TotalPages: int(math.Ceil(float64(total) / float64(*q.PageSize))),
		}
	}

	_ = s.cache.Set(ctx, key, page, int(s.listTTL.Seconds()))
	return page, nil
}

func listKey(q domain.ApartmentsQuery) string {
	var b strings.Builder
	b.WriteString("apartments:")
	if q.Location != nil {
		b.WriteString(strings.ToLower(*q.Location))
	}
	b.WriteByte(':')
	if q.MinPrice != nil {
		fmt.Fprintf(&b, "%.2f", *q.MinPrice)
	}
	b.WriteByte(':')
	if q.MaxPrice != nil {
		fmt.Fprintf(&b, "%.2f", *q.MaxPrice)
	}
	b.WriteByte(':')
	b.WriteString(strings.Join(q.Amenities, ","))
	fmt.Fprintf(&b, ":%d:", q.Page)
	if q.PageSize != nil {
		fmt.Fprintf(&b, "%d", *q.PageSize)
	}
	return b.String()
}

func cleanAmenities(in []string) []string {
	out := make([]string, 0, len(in))
	for _, a := range in {
		if t := strings.TrimSpace(a); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }
