package mysql

// ---------------------------------------------------------------------------
// USERS
// ---------------------------------------------------------------------------

const insertUserSQL = `
INSERT INTO users (id, name, email, password_hash, role, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`

const getUserByIDSQL = `
SELECT id, name, email, password_hash, role, created_at
FROM users
WHERE id = ?
`

const getUserByEmailSQL = `
SELECT id, name, email, password_hash, role, created_at
FROM users
WHERE email = ?
`

// ---------------------------------------------------------------------------
// APARTMENTS
// ---------------------------------------------------------------------------

const insertApartmentSQL = `
INSERT INTO apartments (id, title, description, location, price_per_night, amenities, host_id, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

const getApartmentSQL = `
SELECT a.id, a.title, a.description, a.location, a.price_per_night, a.amenities, a.host_id, a.created_at, u.name
FROM apartments a
JOIN users u ON u.id = a.host_id
WHERE a.id = ?
`

// listApartmentsPrefix and countApartmentsPrefix share a dynamically
// built WHERE clause; see (*Repo).List.
const listApartmentsPrefix = `
SELECT a.id, a.title, a.description, a.location, a.price_per_night, a.amenities, a.host_id, a.created_at, u.name
FROM apartments a
JOIN users u ON u.id = a.host_id
`

const countApartmentsPrefix = `
SELECT COUNT(*)
FROM apartments a
`

// ---------------------------------------------------------------------------
// BOOKINGS
// ---------------------------------------------------------------------------

// lockApartmentSQL takes a row-level exclusive lock on the apartment.
// Every concurrent Reserve for the same apartment blocks here until the
// holder commits, which serializes the read-check-insert sequence.
const lockApartmentSQL = `
SELECT price_per_night
FROM apartments
WHERE id = ?
FOR UPDATE
`

const getGuestNameSQL = `
SELECT name
FROM users
WHERE id = ?
`

// Half-open interval rule: [S, E) conflicts with [s, e) iff
// NOT (S >= e OR E <= s). Ranges touching at a boundary never match.
const overlapExistsSQL = `
SELECT EXISTS(
  SELECT 1
  FROM bookings
  WHERE apartment_id = ?
    AND NOT (? >= end_date OR ? <= start_date)
)
`

const insertBookingSQL = `
INSERT INTO bookings (id, apartment_id, guest_id, start_date, end_date, total_price, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

const getBookingSQL = `
SELECT b.id, b.apartment_id, b.guest_id, u.name, b.start_date, b.end_date, b.total_price, b.created_at
FROM bookings b
JOIN users u ON u.id = b.guest_id
WHERE b.id = ?
`

const listBookingsSQL = `
SELECT b.id, b.apartment_id, b.guest_id, u.name, b.start_date, b.end_date, b.total_price, b.created_at
FROM bookings b
JOIN users u ON u.id = b.guest_id
WHERE b.apartment_id = ?
ORDER BY b.start_date ASC
`
