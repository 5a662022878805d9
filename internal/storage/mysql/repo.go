package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"stayloft/internal/domain"
)

// MySQL error 1062: duplicate entry for a unique key.
const mysqlErrDupEntry = 1062

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func isDupEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDupEntry
}

// ---------------------------------------------------------------------------
// UserRepository
// ---------------------------------------------------------------------------

func (r *Repo) Insert(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, insertUserSQL,
		u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt)
	if isDupEntry(err) {
		// Lost the register/register race on the unique email index.
		return domain.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, getUserByIDSQL, id))
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, getUserByEmailSQL, email))
}

func (r *Repo) scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	var role string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("scan user: %w", err)
	}
	u.Role = domain.Role(role)
	return u, nil
}

// ---------------------------------------------------------------------------
// ApartmentRepository
// ---------------------------------------------------------------------------

// Apartments returns the repo under its apartment port; the single type
// implements all three ports, these accessors just keep wiring readable.
func (r *Repo) Apartments() domain.ApartmentRepository { return apartmentsRepo{r} }
func (r *Repo) Users() domain.UserRepository           { return r }
func (r *Repo) Bookings() domain.BookingRepository     { return bookingsRepo{r} }

type apartmentsRepo struct{ *Repo }

func (r apartmentsRepo) Insert(ctx context.Context, a domain.Apartment) error {
	amenities, err := json.Marshal(a.Amenities)
	if err != nil {
		return fmt.Errorf("marshal amenities: %w", err)
	}
	_, err = r.db.ExecContext(ctx, insertApartmentSQL,
		a.ID, a.Title, a.Description, a.Location, a.PricePerNight, string(amenities), a.HostID, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert apartment: %w", err)
	}
	return nil
}

func (r apartmentsRepo) GetByID(ctx context.Context, id string) (domain.ApartmentView, error) {
	return scanApartment(r.db.QueryRowContext(ctx, getApartmentSQL, id))
}

func (r apartmentsRepo) List(ctx context.Context, q domain.ApartmentsQuery) ([]domain.ApartmentView, int, error) {
	where, args := buildApartmentFilter(q)

	var total int
	if err := r.db.QueryRowContext(ctx, countApartmentsPrefix+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count apartments: %w", err)
	}

	listSQL := listApartmentsPrefix + where + "\nORDER BY a.created_at DESC, a.id DESC"
	listArgs := args
	if q.PageSize != nil {
		listSQL += "\nLIMIT ? OFFSET ?"
		listArgs = append(append([]any{}, args...), q.Limit(), q.Offset())
	}

	rows, err := r.db.QueryContext(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list apartments: %w", err)
	}
	defer rows.Close()

	var out []domain.ApartmentView
	for rows.Next() {
		av, err := scanApartmentRows(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, av)
	}
	return out, total, rows.Err()
}

func buildApartmentFilter(q domain.ApartmentsQuery) (string, []any) {
	var conds []string
	var args []any
	if q.Location != nil {
		conds = append(conds, "LOWER(a.location) = LOWER(?)")
		args = append(args, *q.Location)
	}
	if q.MinPrice != nil {
		conds = append(conds, "a.price_per_night >= ?")
		args = append(args, *q.MinPrice)
	}
	if q.MaxPrice != nil {
		conds = append(conds, "a.price_per_night <= ?")
		args = append(args, *q.MaxPrice)
	}
	// Contains-all: one JSON_CONTAINS per requested amenity.
	for _, am := range q.Amenities {
		conds = append(conds, "JSON_CONTAINS(a.amenities, JSON_QUOTE(?))")
		args = append(args, am)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "\nWHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface{ Scan(dest ...any) error }

func scanApartment(row *sql.Row) (domain.ApartmentView, error) {
	av, err := scanApartmentRows(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ApartmentView{}, domain.ErrNotFound
	}
	return av, err
}

func scanApartmentRows(row rowScanner) (domain.ApartmentView, error) {
	var av domain.ApartmentView
	var amenitiesJSON []byte
	err := row.Scan(
		&av.ID, &av.Title, &av.Description, &av.Location, &av.PricePerNight,
		&amenitiesJSON, &av.HostID, &av.CreatedAt, &av.HostName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ApartmentView{}, err
		}
		return domain.ApartmentView{}, fmt.Errorf("scan apartment: %w", err)
	}
	if err := json.Unmarshal(amenitiesJSON, &av.Amenities); err != nil {
		return domain.ApartmentView{}, fmt.Errorf("decode amenities: %w", err)
	}
	if av.Amenities == nil {
		av.Amenities = []string{}
	}
	return av, nil
}

// ---------------------------------------------------------------------------
// BookingRepository
// ---------------------------------------------------------------------------

type bookingsRepo struct{ *Repo }

// Reserve runs the whole reservation as one transaction. The FOR UPDATE
// lock on the apartment row serializes concurrent reserves for that
// apartment, so between the overlap check and the insert no other writer
// can slip in a conflicting booking: of two racing overlapping requests
// exactly one commits, the other sees the winner's row and gets
// domain.ErrConflict.
func (r bookingsRepo) Reserve(ctx context.Context, apartmentID, guestID string, start, end time.Time) (domain.Booking, error) {
	start, end = domain.ToDay(start), domain.ToDay(end)
	startStr, endStr := start.Format(domain.DayFormat), end.Format(domain.DayFormat)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("begin reserve tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var price float64
	err = tx.QueryRowContext(ctx, lockApartmentSQL, apartmentID).Scan(&price)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Booking{}, fmt.Errorf("apartment %s: %w", apartmentID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Booking{}, fmt.Errorf("lock apartment: %w", err)
	}

	var guestName string
	err = tx.QueryRowContext(ctx, getGuestNameSQL, guestID).Scan(&guestName)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Booking{}, fmt.Errorf("guest %s: %w", guestID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Booking{}, fmt.Errorf("resolve guest: %w", err)
	}

	var conflicts bool
	if err := tx.QueryRowContext(ctx, overlapExistsSQL, apartmentID, startStr, endStr).Scan(&conflicts); err != nil {
		return domain.Booking{}, fmt.Errorf("overlap check: %w", err)
	}
	if conflicts {
		return domain.Booking{}, domain.ErrConflict
	}

	nights := domain.Nights(start, end)
	if nights < 1 {
		return domain.Booking{}, fmt.Errorf("%w: endDate must be after startDate", domain.ErrInvalid)
	}
	total := math.Round(float64(nights)*price*100) / 100

	b := domain.Booking{
		ID:          uuid.New().String(),
		ApartmentID: apartmentID,
		GuestID:     guestID,
		GuestName:   guestName,
		StartDate:   start,
		EndDate:     end,
		TotalPrice:  total,
		CreatedAt:   time.Now().UTC(),
	}
	_, err = tx.ExecContext(ctx, insertBookingSQL,
		b.ID, b.ApartmentID, b.GuestID, startStr, endStr, b.TotalPrice, b.CreatedAt)
	if isDupEntry(err) {
		// Backstop unique index on (apartment_id, start_date).
		return domain.Booking{}, domain.ErrConflict
	}
	if err != nil {
		return domain.Booking{}, fmt.Errorf("insert booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Booking{}, fmt.Errorf("commit reserve tx: %w", err)
	}

	// Re-read outside the tx so the caller gets exactly what was stored.
	return r.getBooking(ctx, b.ID)
}

func (r bookingsRepo) getBooking(ctx context.Context, id string) (domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, getBookingSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Booking{}, fmt.Errorf("booking %s vanished after commit: %w", id, domain.ErrNotFound)
	}
	return b, err
}

func (r bookingsRepo) ListForApartment(ctx context.Context, apartmentID string) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, listBookingsSQL, apartmentID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	out := []domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBooking(row rowScanner) (domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID, &b.ApartmentID, &b.GuestID, &b.GuestName,
		&b.StartDate, &b.EndDate, &b.TotalPrice, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Booking{}, err
		}
		return domain.Booking{}, fmt.Errorf("scan booking: %w", err)
	}
	// DATE columns come back at midnight; pin them to UTC regardless of
	// the connection's loc setting.
	b.StartDate = domain.ToDay(b.StartDate)
	b.EndDate = domain.ToDay(b.EndDate)
	return b, nil
}
