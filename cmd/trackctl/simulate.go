package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"sitepulse/api/classify"
	"sitepulse/api/handlers"
	"sitepulse/api/logger"
	"sitepulse/api/tracker"
)

var (
	simDwell       time.Duration
	simReferrer    string
	simClick       string
	simSessionFile string
	simPrefixes    []string
	simNewSession  bool
)

func init() {
	simulateCmd.Flags().DurationVar(&simDwell, "dwell", 4*time.Second, "time spent on each page")
	simulateCmd.Flags().StringVar(&simReferrer, "referrer", "", "inbound referrer for the first page view")
	simulateCmd.Flags().StringVar(&simClick, "click", "", "label of a button clicked on every tracked page")
	simulateCmd.Flags().StringVar(&simSessionFile, "session-file", "", "file that keeps the visitor session id between runs")
	simulateCmd.Flags().StringSliceVar(&simPrefixes, "tracked", classify.DefaultTrackedPrefixes, "tracked path prefixes")
	simulateCmd.Flags().BoolVar(&simNewSession, "new-session", false, "forget the stored session id first")
}

var simulateCmd = &cobra.Command{
	Use:   "simulate <url>...",
	Short: "Replay a visitor browsing the given pages",
	Long: `Replay one visitor through the given URLs using the same session logic
as the site tracker, then close the tab. Useful for smoke-testing ingestion.

Examples:
  trackctl simulate / /blog --dwell 5s
  trackctl simulate "/?utm_source=google&utm_medium=organic" /blog --click Subscribe`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSimulate,
}

func runSimulate(cmd *cobra.Command, args []string) error {
	log, err := logger.New("development")
	if err != nil {
		return err
	}

	var identity tracker.IdentityStore = tracker.NewMemoryIdentityStore()
	if simSessionFile != "" {
		identity = tracker.NewFileIdentityStore(simSessionFile)
	}

	transport := tracker.NewHTTPTransport(serverURL+handlers.TrackPath, &http.Client{Timeout: timeout}, log)

	// Replay on a virtual clock that ends at the real current time so no
	// event is stamped in the future.
	clock := time.Now().Add(-simDwell * time.Duration(len(args)))
	paths := classify.NewPathPolicy(simPrefixes...)
	m := tracker.NewManager(tracker.Config{
		Transport: transport,
		Identity:  identity,
		Trackable: paths.Trackable,
		Referrer:  simReferrer,
		Now:       func() time.Time { return clock },
		Log:       log,
	})
	if simNewSession {
		m.ClearSession()
	}

	out := cmd.OutOrStdout()
	for _, target := range args {
		m.Navigate(target)
		if !m.Active() {
			fmt.Fprintf(out, "%s: not tracked\n", target)
		} else {
			fmt.Fprintf(out, "%s: viewed for %s\n", target, simDwell)
		}
		if simClick != "" {
			clock = clock.Add(simDwell / 2)
			m.Click(&tracker.Node{Tag: "button", Content: simClick})
			clock = clock.Add(simDwell - simDwell/2)
		} else {
			clock = clock.Add(simDwell)
		}
	}

	// Let regular sends land, then close the tab: only the keepalive exit
	// may outlive the page.
	transport.Wait()
	m.Hide()
	transport.Close()
	transport.Wait()
	return nil
}
