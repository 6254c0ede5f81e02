package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

type wsMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func newWatchCmd() *cobra.Command {
	var (
		server string
		patent string
		count  int
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream vehicle availability events from a running API",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := wsURL(server)
			if err != nil {
				return err
			}
			c, _, err := websocket.DefaultDialer.DialContext(cmd.Context(), u, http.Header{})
			if err != nil {
				return fmt.Errorf("dial %s: %w", u, err)
			}
			defer func() { _ = c.Close() }()
			go func() {
				<-cmd.Context().Done()
				_ = c.Close()
			}()

			if err := c.WriteJSON(wsMessage{Type: "connection_init"}); err != nil {
				return err
			}
			pl, _ := json.Marshal(map[string]string{"patent": patent})
			if err := c.WriteJSON(wsMessage{Type: "subscribe", ID: "1", Payload: pl}); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			seen := 0
			for {
				var m wsMessage
				if err := c.ReadJSON(&m); err != nil {
					if cmd.Context().Err() != nil {
						return nil
					}
					return fmt.Errorf("read: %w", err)
				}
				switch m.Type {
				case "next":
					fmt.Fprintln(out, string(m.Payload))
					seen++
					if count > 0 && seen >= count {
						return nil
					}
				case "error":
					return fmt.Errorf("server error: %s", m.Payload)
				case "complete":
					return nil
				}
			}
		},
	}
	cmd.Flags().StringVar(&server, "server", "http://localhost:8080", "API base URL")
	cmd.Flags().StringVar(&patent, "patent", "", "only events for this vehicle")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "exit after this many events (0 = until interrupted)")
	return cmd
}

// wsURL maps an http(s) base URL to the vehicle events websocket endpoint.
func wsURL(base string) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path += "/api/v1/vehicules/ws"
	return u.String(), nil
}
