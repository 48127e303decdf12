package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aymounosbedoui82-commits/lamis/internal/appointment"
	"github.com/aymounosbedoui82-commits/lamis/internal/db"
	"github.com/aymounosbedoui82-commits/lamis/internal/reminder"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := db.EnsureSchema(context.Background(), pool); err != nil {
		log.Fatalf("schema bootstrap: %v", err)
	}

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedAppointments(context.Background(), pool, 200); err != nil {
		log.Fatalf("seed appointments: %v", err)
	}

	log.Println("seed complete")
}

var languages = []string{"ar", "fr", "en"}

var titles = map[string][]string{
	"en": {"Dentist", "Team standup", "Call with the bank", "Gym session", "Pick up the kids"},
	"fr": {"Dentiste", "Réunion d'équipe", "Appel avec la banque", "Séance de sport", "Chercher les enfants"},
	"ar": {"طبيب الأسنان", "اجتماع الفريق", "مكالمة مع البنك", "حصة رياضة", "جلب الأطفال"},
}

func seedAppointments(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d appointments with reminders", count)

	repo := appointment.NewPgRepository(pool)
	now := time.Now()

	for i := 0; i < count; i++ {
		lang := languages[gofakeit.Number(0, len(languages)-1)]
		pick := titles[lang]

		// spread moments from 10 minutes to two weeks out
		moment := now.Add(time.Duration(gofakeit.Number(10, 14*24*60)) * time.Minute).Truncate(time.Second)

		appt := &appointment.Appointment{
			ID:          uuid.New(),
			OwnerID:     int64(gofakeit.Number(100_000, 999_999)),
			Title:       pick[gofakeit.Number(0, len(pick)-1)],
			Description: gofakeit.Sentence(6),
			Moment:      moment,
			Priority:    appointment.Priority(gofakeit.Number(1, 3)),
			Language:    lang,
			Status:      appointment.StatusScheduled,
		}

		created, err := repo.CreateAppointment(ctx, appt)
		if err != nil {
			return err
		}

		reminders := reminder.Plan(created.Moment, now)
		for j := range reminders {
			reminders[j].ID = uuid.New()
			reminders[j].AppointmentID = created.ID
		}
		if err := repo.CreateReminders(ctx, reminders); err != nil {
			return err
		}
	}

	return nil
}
