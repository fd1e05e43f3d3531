/* Replay a JSON-lines file of raw SAME header copies through the core and print active alerts. */
package main

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	wxsame "github.com/n1kbb/wxsame/src"
)

/*------------------------------------------------------------------
 *
 * Purpose:	Small demonstration driver for the SAME header core: feed
 *		it a recorded JSON-lines capture instead of a live tuner,
 *		and print the alerts that end up active for one county.
 *
 * Description:	Each input line is one decoded raw header copy:
 *
 *		{"message_id": "m1", "transmitter": "KCLE",
 *		 "bytes_hex": "2d...", "confidences": [9,9,...],
 *		 "arrival": 1591829100}
 *
 *		Lines sharing a message_id are copies of the same
 *		over-the-air transmission and accumulate into one
 *		SAMEMessage; every message_id is forced complete once the
 *		file is exhausted, then submitted to a MessageCache scoped
 *		to --county.
 *
 *------------------------------------------------------------------*/

type replayLine struct {
	MessageID   string `json:"message_id"`
	Transmitter string `json:"transmitter"`
	BytesHex    string `json:"bytes_hex"`
	Confidences []int  `json:"confidences"`
	Arrival     int64  `json:"arrival"`
}

func main() {
	var county = pflag.StringP("county", "c", "", "County FIPS code to report active alerts for (required)")
	var verbose = pflag.BoolP("verbose", "v", false, "Print every header copy as it's applied, not just the final alerts")
	var help = pflag.Bool("help", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - Replay a JSON-lines SAME header capture.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "\t%s --county FIPS [capture.jsonl]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}
	if *county == "" {
		fmt.Fprintln(os.Stderr, "--county is required")
		pflag.Usage()
		os.Exit(1)
	}

	in := os.Stdin
	if args := pflag.Args(); len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "opening %s: %s\n", args[0], err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	if err := run(in, *county, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(in *os.File, county string, verbose bool) error {
	messages := make(map[string]*wxsame.SAMEMessage)
	order := make([]string, 0)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rl replayLine
		if err := json.Unmarshal(line, &rl); err != nil {
			return fmt.Errorf("parsing replay line: %w", err)
		}

		raw, err := hex.DecodeString(rl.BytesHex)
		if err != nil {
			return fmt.Errorf("decoding bytes_hex for %s: %w", rl.MessageID, err)
		}

		msg, ok := messages[rl.MessageID]
		if !ok {
			msg = wxsame.NewSAMEMessage(rl.Transmitter, nil, nil)
			messages[rl.MessageID] = msg
			order = append(order, rl.MessageID)
		}

		if err := msg.AddHeader(raw, rl.Confidences, rl.Arrival); err != nil {
			return fmt.Errorf("adding header copy for %s: %w", rl.MessageID, err)
		}
		if verbose {
			avg := msg.GetSAMEMessage()
			fmt.Printf("%s: copy %d -> %q\n", rl.MessageID, msg.HeaderCount(), avg.Text)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading capture: %w", err)
	}

	loc := wxsame.Location{FIPS: county}
	cache := wxsame.NewMessageCache(loc, nil, nil, nil)
	cache.OnScoreChanged(func(score int, triggering *wxsame.SAMEMessage) {
		if triggering != nil {
			fmt.Printf("score -> %d (%s %s)\n", score, triggering.EventType(), triggering.Broadcaster())
		} else {
			fmt.Printf("score -> %d\n", score)
		}
	})

	for _, id := range order {
		msg := messages[id]
		msg.FullyReceived(true, false)
		cache.Submit(msg, nil)
	}

	active := cache.GetActiveMessages(nil, true)
	if len(active) == 0 {
		fmt.Printf("no active alerts for %s\n", county)
		return nil
	}
	for _, sm := range active {
		avg := sm.Message.GetSAMEMessage()
		fmt.Printf("%-3s score=%-3d %s\n", sm.Message.EventType(), sm.Score, avg.Text)
	}
	return nil
}
