package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/contactkeval/option-data/internal/data"
	"github.com/contactkeval/option-data/internal/indicator"
	"github.com/contactkeval/option-data/internal/logger"
	"github.com/contactkeval/option-data/internal/series"
)

// envOr reads an environment variable as the flag default.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	optionsDir := flag.String("options", envOr("OPTION_DATA_OPTIONS", "data/options"), "options data folder (<expiry>/<strike>_<CE|PE>.csv)")
	spotLoc := flag.String("spot", envOr("OPTION_DATA_SPOT", "data/spot.csv"), "spot data CSV file or per-date folder")
	rest := flag.Bool("rest", false, "run as REST server (serve data queries)")
	port := flag.String("port", envOr("OPTION_DATA_ADDR", ":8080"), "REST server listen address")
	verbosity := flag.Int("v", 1, "log verbosity (0=error 1=info 2=debug 3=trace)")
	flag.Parse()

	logger.SetVerbosity(*verbosity)

	opts, spot, err := data.Open(*optionsDir, *spotLoc)
	if err != nil {
		log.Fatalf("opening backtest data: %v", err)
	}
	engine := indicator.NewEngine()

	if *rest {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })

		mux.HandleFunc("/info", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, opts.Info())
		})

		mux.HandleFunc("/expiries", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, opts.Info().Expiries)
		})

		mux.HandleFunc("/strikes", func(w http.ResponseWriter, r *http.Request) {
			expiry, err := parseQueryTime(r, "expiry")
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			writeJSON(w, opts.ListStrikes(expiry))
		})

		mux.HandleFunc("/price", func(w http.ResponseWriter, r *http.Request) {
			expiry, err := parseQueryTime(r, "expiry")
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			at, err := parseQueryTime(r, "at")
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			strike, err := strconv.ParseFloat(r.URL.Query().Get("strike"), 64)
			if err != nil {
				http.Error(w, "invalid strike", http.StatusBadRequest)
				return
			}
			typ := series.OptionType(r.URL.Query().Get("type"))

			quote, err := opts.QuoteAt(expiry, strike, typ, at, queryTolerance(r)).Take()
			if err != nil {
				http.Error(w, "no bar within tolerance", http.StatusNotFound)
				return
			}
			writeJSON(w, quote)
		})

		mux.HandleFunc("/spot", func(w http.ResponseWriter, r *http.Request) {
			at, err := parseQueryTime(r, "at")
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			price, err := spot.PriceAt(at, queryTolerance(r)).Take()
			if err != nil {
				http.Error(w, "no bar within tolerance", http.StatusNotFound)
				return
			}
			writeJSON(w, map[string]float64{"price": price})
		})

		mux.HandleFunc("/indicator", func(w http.ResponseWriter, r *http.Request) {
			expiry, err := parseQueryTime(r, "expiry")
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			strike, err := strconv.ParseFloat(r.URL.Query().Get("strike"), 64)
			if err != nil {
				http.Error(w, "invalid strike", http.StatusBadRequest)
				return
			}
			typ := series.OptionType(r.URL.Query().Get("type"))

			table := opts.LoadBars(expiry, strike, typ)
			if table.Empty() {
				http.Error(w, "no data for contract", http.StatusNotFound)
				return
			}

			period, _ := strconv.Atoi(r.URL.Query().Get("period"))
			params := indicator.Params{Period: period, Column: r.URL.Query().Get("column")}
			result, err := engine.Compute(table, r.URL.Query().Get("name"), params)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			writeJSON(w, result)
		})

		mux.HandleFunc("/cache/clear", func(w http.ResponseWriter, r *http.Request) {
			opts.ClearCache()
			w.WriteHeader(200)
			w.Write([]byte("ok"))
		})

		logger.Infof("starting REST server on %s", *port)
		log.Fatal(http.ListenAndServe(*port, mux))
		return
	}

	// one-shot mode: summarize the datasets and exit
	info := opts.Info()
	dates := spot.ListAvailableDates()
	summary := map[string]any{
		"options":    info,
		"spot_days":  len(dates),
		"indicators": engine.Names(),
	}
	if len(dates) > 0 {
		summary["spot_start"] = dates[0].Format("2006-01-02")
		summary["spot_end"] = dates[len(dates)-1].Format("2006-01-02")
	}
	out, _ := json.MarshalIndent(summary, "", "  ")
	log.Printf("dataset summary:\n%s", out)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// parseQueryTime reads a date or datetime query parameter.
func parseQueryTime(r *http.Request, key string) (time.Time, error) {
	raw := r.URL.Query().Get(key)
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339, "2006-01-02"} {
		if ts, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, &badParamError{key: key, value: raw}
}

// queryTolerance reads the tolerance query parameter in minutes; 0 selects
// the default.
func queryTolerance(r *http.Request) time.Duration {
	minutes, err := strconv.Atoi(r.URL.Query().Get("tolerance"))
	if err != nil || minutes <= 0 {
		return 0
	}
	return time.Duration(minutes) * time.Minute
}

type badParamError struct{ key, value string }

func (e *badParamError) Error() string {
	return "invalid or missing " + e.key + " parameter: " + e.value
}
