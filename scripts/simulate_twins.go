// simulate_twins.go: standalone script that submits randomized variants of the
// reference twins to a running twinscore service, for demos and load checks.
//
// Usage:
//
//	go run scripts/simulate_twins.go -api http://localhost:5001 -n 20 -seed 7
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/MikeSquared-Agency/TwinScore/internal/presets"
	"github.com/MikeSquared-Agency/TwinScore/internal/scoring"
)

type evaluateResponse struct {
	ID             string  `json:"id"`
	FinalScore     float64 `json:"final_score"`
	Classification string  `json:"classification"`
}

func main() {
	apiURL := flag.String("api", "http://localhost:5001", "twinscore API base URL")
	count := flag.Int("n", 10, "number of twins to submit")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed")
	clientID := flag.String("client", "simulator", "X-Client-ID header value")
	liveRenewable := flag.Bool("live-renewable", false, "omit renewable_percentage so the service looks it up")
	dryRun := flag.Bool("dry-run", false, "print payloads without posting")
	flag.Parse()

	rng := rand.New(rand.NewPCG(*seed, *seed>>1|1))
	base := presets.List()

	client := &http.Client{Timeout: 30 * time.Second}
	counts := map[string]int{}
	failed := 0
	for i := 0; i < *count; i++ {
		raw := variant(rng, base[i%len(base)], !*liveRenewable)

		body, _ := json.Marshal(raw)
		if *dryRun {
			fmt.Printf("[%d] %s\n", i+1, body)
			continue
		}

		req, err := http.NewRequest("POST", *apiURL+"/api/v1/evaluate", bytes.NewReader(body))
		if err != nil {
			log.Fatalf("build request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Client-ID", *clientID)

		resp, err := client.Do(req)
		if err != nil {
			log.Printf("twin %d: %v", i+1, err)
			failed++
			continue
		}
		var out evaluateResponse
		err = json.NewDecoder(resp.Body).Decode(&out)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK || err != nil {
			log.Printf("twin %d: status %d", i+1, resp.StatusCode)
			failed++
			continue
		}

		counts[out.Classification]++
		log.Printf("twin %d (%s): %.2f %s", i+1, raw.Application, out.FinalScore, out.Classification)
	}

	if !*dryRun {
		log.Printf("done: %v, %d failed", counts, failed)
	}
}

// variant jitters a preset's consumption and lifespan by up to 50% and picks
// random sustainability attributes.
func variant(rng *rand.Rand, p presets.Preset, withRenewable bool) scoring.RawRequest {
	raw := p.Request()
	for i := range raw.Components {
		c := p.Components[i]
		raw.Components[i].Consumption = scoring.Q(round2(c.Consumption * (0.5 + rng.Float64())))
		raw.Components[i].Lifespan = scoring.Q(round2(c.Lifespan * (0.5 + rng.Float64())))
		if rng.IntN(4) == 0 {
			raw.Components[i].WasteKg = scoring.Q(round2(rng.Float64() * 2))
		}
	}
	if withRenewable {
		raw.RenewablePercentage = scoring.Q(float64(rng.IntN(101)))
	}
	reusable := rng.IntN(2) == 0
	raw.Reusable = &reusable
	return raw
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
