package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// simulate fires scheduling requests built from a multilingual phrase bank
// at a running assistant and reports how many resolved into appointments.

type phrase struct {
	lang string
	text string
}

var phraseBank = []phrase{
	{"en", "tomorrow at 16:30"},
	{"en", "on Thursday at 4pm"},
	{"en", "December 25 at 16"},
	{"en", "in two hours"},
	{"en", "in 45 minutes"},
	{"en", "next week at 10 am"},
	{"fr", "demain à 16h30"},
	{"fr", "jeudi vers 9h"},
	{"fr", "le 25 décembre à 14h"},
	{"fr", "dans une heure"},
	{"fr", "après-demain à 8 du matin"},
	{"ar", "غدا على الساعة 5 مساء"},
	{"ar", "الخميس في 16"},
	{"ar", "بعد ساعتين"},
	{"ar", "25 ديسمبر على 10 صباحا"},
	{"ar", "25 جانفي على 10 صباحا"},
	// deliberately unresolvable, should come back 422
	{"en", "whenever you like"},
	{"fr", "un de ces jours"},
}

var titleBank = map[string]string{
	"en": "Simulated appointment",
	"fr": "Rendez-vous simulé",
	"ar": "موعد تجريبي",
}

type counters struct {
	sent       atomic.Int64
	created    atomic.Int64
	unresolved atomic.Int64
	failed     atomic.Int64
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	baseURL := getenv("API_BASE_URL", "http://127.0.0.1:8080")
	workers := 4
	duration := 30 * time.Second
	if v := os.Getenv("SIM_DURATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			duration = d
		}
	}

	log.Printf("simulating against %s workers=%d duration=%s", baseURL, workers, duration)

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	var c counters
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			runWorker(ctx, baseURL, rand.New(rand.NewSource(seed)), &c)
		}(time.Now().UnixNano() + int64(i))
	}
	wg.Wait()

	fmt.Printf("\nsimulation report\n")
	fmt.Printf("  requests:   %d\n", c.sent.Load())
	fmt.Printf("  created:    %d\n", c.created.Load())
	fmt.Printf("  unresolved: %d\n", c.unresolved.Load())
	fmt.Printf("  failed:     %d\n", c.failed.Load())
}

func runWorker(ctx context.Context, baseURL string, rng *rand.Rand, c *counters) {
	client := &http.Client{Timeout: 10 * time.Second}

	for ctx.Err() == nil {
		p := phraseBank[rng.Intn(len(phraseBank))]

		body, _ := json.Marshal(map[string]any{
			"owner_id": int64(rng.Intn(900_000) + 100_000),
			"title":    titleBank[p.lang],
			"when":     p.text,
			"language": p.lang,
		})

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/appointments", bytes.NewReader(body))
		if err != nil {
			return
		}
		req.Header.Set("Content-Type", "application/json")

		c.sent.Add(1)
		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() == nil {
				c.failed.Add(1)
			}
			continue
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusCreated:
			c.created.Add(1)
		case http.StatusUnprocessableEntity:
			c.unresolved.Add(1)
		default:
			c.failed.Add(1)
		}

		time.Sleep(time.Duration(rng.Intn(200)) * time.Millisecond)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
