// riskwatch polls the risk assessment of a stored portfolio, printing each
// response. It exists to watch drawdown limits during rapid market moves:
// point it at a portfolio id and it reports the risk level until it is
// stopped or the poll count runs out. With --watch it subscribes to the
// WebSocket stream instead of polling.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

const assessmentPathFormat = "/api/portfolios/%s/risk/assessment"

func main() {
	hostFlag := flag.String("host", "http://localhost:8080", "Service base URL")
	portfolioFlag := flag.String("portfolio", "", "Portfolio id to assess (required)")
	countFlag := flag.Int("count", 10, "Number of polls; 0 polls until interrupted")
	intervalFlag := flag.Duration("interval", 500*time.Millisecond, "Delay between polls")
	watchFlag := flag.Bool("watch", false, "Subscribe to the WebSocket risk stream instead of polling")

	flag.Parse()

	if *portfolioFlag == "" {
		fmt.Println("Error: --portfolio flag is required")
		flag.Usage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var err error
	if *watchFlag {
		err = watch(ctx, *hostFlag, *portfolioFlag)
	} else {
		err = poll(ctx, *hostFlag, *portfolioFlag, *countFlag, *intervalFlag)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// poll requests the assessment endpoint count times with a fixed delay and
// prints each response. Any non-200 response or transport error fails the
// run.
func poll(ctx context.Context, host, portfolioID string, count int, interval time.Duration) error {
	endpoint := strings.TrimSuffix(host, "/") + fmt.Sprintf(assessmentPathFormat, url.PathEscape(portfolioID))
	client := &http.Client{Timeout: 10 * time.Second}

	for i := 0; count == 0 || i < count; i++ {
		if i > 0 {
			select {
			case <-time.After(interval):
			case <-ctx.Done():
				return nil
			}
		}

		body, status, err := fetchAssessment(ctx, client, endpoint)
		if err != nil {
			return fmt.Errorf("assessment %d failed: %w", i+1, err)
		}

		fmt.Printf("Assessment %d (%d): %s\n", i+1, status, body)

		if status != http.StatusOK {
			return fmt.Errorf("assessment %d returned status %d", i+1, status)
		}
	}

	return nil
}

func fetchAssessment(ctx context.Context, client *http.Client, endpoint string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", 0, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, err
	}

	return strings.TrimSpace(string(body)), resp.StatusCode, nil
}

// watch dials the risk stream and prints every pushed assessment until the
// server closes the connection or the process is interrupted.
func watch(ctx context.Context, host, portfolioID string) error {
	streamURL, err := toStreamURL(host, portfolioID)
	if err != nil {
		return err
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, streamURL, nil)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			return fmt.Errorf("stream rejected with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}

		return fmt.Errorf("failed to dial %s: %w", streamURL, err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	fmt.Printf("Watching %s\n", streamURL)

	for i := 1; ; i++ {
		var assessment json.RawMessage
		if err := conn.ReadJSON(&assessment); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}

			return fmt.Errorf("stream read failed: %w", err)
		}

		fmt.Printf("Assessment %d: %s\n", i, assessment)
	}
}

// toStreamURL rewrites the service base URL to the WebSocket stream endpoint.
func toStreamURL(host, portfolioID string) (string, error) {
	parsed, err := url.Parse(host)
	if err != nil {
		return "", fmt.Errorf("invalid host %q: %w", host, err)
	}

	switch parsed.Scheme {
	case "http", "ws":
		parsed.Scheme = "ws"
	case "https", "wss":
		parsed.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q in host %q", parsed.Scheme, host)
	}

	parsed.Path = strings.TrimSuffix(parsed.Path, "/") + fmt.Sprintf("/api/portfolios/%s/risk/stream", url.PathEscape(portfolioID))

	return parsed.String(), nil
}
