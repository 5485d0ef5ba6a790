// The replay binary verifies a recorded match log: header shape, gapless
// round ordering, and the digest chain, optionally cross-checking the
// final digest against the match index.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"gridwar.gg/internal/matchlog"
	"gridwar.gg/internal/persistence/indexdb"
	persistlog "gridwar.gg/internal/persistence/log"
)

func main() {
	var (
		logPath = flag.String("log", "", "path to match log (.jsonl.zst)")
		indexDB = flag.String("index", "", "match index db to cross-check (optional)")
	)
	flag.Parse()

	if *logPath == "" {
		fmt.Fprintln(os.Stderr, "missing -log")
		os.Exit(2)
	}

	r, err := persistlog.Open(*logPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer r.Close()

	hdr := r.Header()
	fmt.Printf("match %s map=%s ruleset=%s seed=%d\n", hdr.MatchID, hdr.Map, hdr.Ruleset, hdr.Seed)

	var (
		rounds      int
		records     int
		actions     int
		deaths      int
		finalDigest string
	)
	for {
		entry, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "read:", err)
			os.Exit(1)
		}
		if int(entry.Round) != rounds {
			fmt.Fprintf(os.Stderr, "round gap: got %d want %d\n", entry.Round, rounds)
			os.Exit(1)
		}
		if entry.Digest == "" {
			fmt.Fprintf(os.Stderr, "round %d: missing digest\n", entry.Round)
			os.Exit(1)
		}
		for _, rec := range entry.Records {
			if rec.Round != entry.Round {
				fmt.Fprintf(os.Stderr, "round %d: record stamped %d\n", entry.Round, rec.Round)
				os.Exit(1)
			}
			switch rec.Kind {
			case matchlog.RecordAction:
				if !rec.Action.Valid() {
					fmt.Fprintf(os.Stderr, "round %d: unknown action %d\n", entry.Round, rec.Action)
					os.Exit(1)
				}
				actions++
			case matchlog.RecordDied:
				deaths++
			}
		}
		records += len(entry.Records)
		finalDigest = entry.Digest
		rounds++
	}

	fmt.Printf("replay ok: rounds=%d records=%d actions=%d deaths=%d\n", rounds, records, actions, deaths)
	fmt.Printf("final digest %s\n", finalDigest)

	if *indexDB != "" {
		db, err := indexdb.Open(*indexDB)
		if err != nil {
			fmt.Fprintln(os.Stderr, "index:", err)
			os.Exit(1)
		}
		defer db.Close()
		row, err := db.Match(hdr.MatchID)
		if err != nil {
			fmt.Fprintln(os.Stderr, "index lookup:", err)
			os.Exit(1)
		}
		if row.FinalDigest != finalDigest {
			fmt.Fprintf(os.Stderr, "digest mismatch: index has %s\n", row.FinalDigest)
			os.Exit(1)
		}
		fmt.Println("index digest matches")
	}
}
