package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"stayloft/internal/adapters/observability"
	redisad "stayloft/internal/adapters/redis"
	"stayloft/internal/adapters/tokens"
	"stayloft/internal/app"
	"stayloft/internal/domain"
	"stayloft/internal/shared"
	mysqlrepo "stayloft/internal/storage/mysql"
)

// Demo fixtures for local development. Running twice is safe: already
// registered emails are skipped.
var hosts = []struct {
	name, email string
	apartments  []app.CreateApartment
}{
	{
		name: "Hana Almeida", email: "hana@stayloft.dev",
		apartments: []app.CreateApartment{
			{Title: "River Loft", Description: "Bright two-room loft overlooking the Tagus.", Location: "Lisbon", PricePerNight: 120.50, Amenities: []string{"wifi", "heating", "washer"}},
			{Title: "Alfama Studio", Description: "Compact studio in the old town, steps from the tram.", Location: "Lisbon", PricePerNight: 78, Amenities: []string{"wifi"}},
		},
	},
	{
		name: "Miro Kovač", email: "miro@stayloft.dev",
		apartments: []app.CreateApartment{
			{Title: "Harbour View Flat", Description: "Quiet flat with a balcony over the marina.", Location: "Split", PricePerNight: 95, Amenities: []string{"wifi", "air conditioning", "parking"}},
		},
	},
}

var guests = []struct{ name, email string }{
	{"Gabi Nowak", "gabi@stayloft.dev"},
	{"Tomás Rey", "tomas@stayloft.dev"},
}

const seedPassword = "stayloft-demo"

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)
	log.Info().Int("workers", cfg.SeedWorkers).Msg("seeder starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	codec := tokens.New(cfg.JWTSecret, cfg.TokenTTL)

	identity := app.NewIdentityService(repo.Users(), codec)
	apartments := app.NewApartmentService(repo.Apartments(), repo.Users(), cache, cfg.CacheTTL, cfg.ListCacheTTL)

	sem := semaphore.NewWeighted(int64(cfg.SeedWorkers))
	var wg sync.WaitGroup

	for _, g := range guests {
		if _, _, err := register(ctx, identity, g.name, g.email, domain.RoleGuest); err != nil {
			log.Fatal().Err(err).Str("email", g.email).Msg("seed guest failed")
		}
	}

	for _, h := range hosts {
		host, existed, err := register(ctx, identity, h.name, h.email, domain.RoleHost)
		if err != nil {
			log.Fatal().Err(err).Str("email", h.email).Msg("seed host failed")
		}
		if existed {
			log.Info().Str("email", h.email).Msg("host already seeded, skipping apartments")
			continue
		}

		for _, in := range h.apartments {
			in := in

			// acquire before launching the goroutine; release inside it
			if err := sem.Acquire(ctx, 1); err != nil {
				log.Fatal().Err(err).Msg("semaphore acquire failed")
			}

			wg.Add(1)
			go func(hostID string) {
				defer wg.Done()
				defer sem.Release(1)

				av, err := apartments.Create(ctx, in, hostID)
				if err != nil {
					log.Warn().Str("title", in.Title).Err(err).Msg("seed apartment failed")
					return
				}
				log.Info().Str("id", av.ID).Str("title", av.Title).Msg("apartment seeded")
			}(host.ID)
		}
	}

	wg.Wait()
	log.Info().Msg("seeding completed")
}

// register creates the user, or resolves the existing one when the email
// is already present.
func register(ctx context.Context, identity *app.IdentityService, name, email string, role domain.Role) (domain.User, bool, error) {
	u, _, err := identity.Register(ctx, name, email, seedPassword, role)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, domain.ErrEmailTaken) {
		return domain.User{}, false, fmt.Errorf("register %s: %w", email, err)
	}
	u, _, err = identity.Authenticate(ctx, email, seedPassword)
	if err != nil {
		return domain.User{}, false, fmt.Errorf("resolve existing %s: %w", email, err)
	}
	return u, true, nil
}
